// @title           knotty API
// @version         1.0
// @description     REST API for the knotty storefront (catalog, orders, reviews, accounts).
// @contact.name    knotty
// @contact.email   support@knotty.dev
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /api/v1

package main

import "knotty_backend/internal/app"

func main() {
	app.Run()
}
