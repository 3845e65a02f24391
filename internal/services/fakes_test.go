package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"knotty_backend/internal/email"
	"knotty_backend/internal/models"
	"knotty_backend/internal/repositories"
)

// In-memory fakes backing the service tests. They implement the same
// conditional-update semantics as the SQL implementations.

type fakeUserRepo struct {
	users  map[string]*models.User
	nextID int

	addresses map[string]*models.ShippingAddress
	wishlist  map[string]map[string]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:     make(map[string]*models.User),
		addresses: make(map[string]*models.ShippingAddress),
		wishlist:  make(map[string]map[string]bool),
	}
}

func (f *fakeUserRepo) FindByID(id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) Create(user *models.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("u%d", f.nextID)
	user.CreatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) UpdateProfile(userID string, fields map[string]interface{}) error {
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	if v, ok := fields["name"]; ok {
		u.Name = v.(string)
	}
	if v, ok := fields["age"]; ok {
		u.Age = v.(int)
	}
	if v, ok := fields["phone_number"]; ok {
		u.PhoneNumber = v.(string)
	}
	if v, ok := fields["profile_image"]; ok {
		u.ProfileImage = v.(string)
	}
	if v, ok := fields["newsletter"]; ok {
		u.Newsletter = v.(bool)
	}
	if v, ok := fields["email_notifications"]; ok {
		u.EmailNotifications = v.(bool)
	}
	if v, ok := fields["is_active"]; ok {
		u.IsActive = v.(bool)
	}
	return nil
}

func (f *fakeUserRepo) SetPassword(userID, passwordHash string) error {
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) SetActive(userID string, active bool) error {
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (f *fakeUserRepo) SetRole(userID string, role models.UserRole) error {
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUserRepo) Delete(userID string) error {
	if _, ok := f.users[userID]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(f.users, userID)
	return nil
}

func (f *fakeUserRepo) FindAll(limit, offset int) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) CountAll() (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) FindWithFilter(criteria repositories.UserFilter) ([]models.User, int64, error) {
	var out []models.User
	for _, u := range f.users {
		if criteria.Role != "" && u.Role != criteria.Role {
			continue
		}
		if criteria.IsActive != nil && u.IsActive != *criteria.IsActive {
			continue
		}
		if criteria.Search != "" &&
			!strings.Contains(u.Email, criteria.Search) &&
			!strings.Contains(u.Name, criteria.Search) {
			continue
		}
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) StoreLoginCode(userID, code string, expiresAt time.Time) error {
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.MfaLoginCode = code
	u.MfaLoginCodeExp = &expiresAt
	return nil
}

func (f *fakeUserRepo) ConsumeLoginCode(userID, code string) (bool, error) {
	u, ok := f.users[userID]
	if !ok {
		return false, nil
	}
	if u.MfaLoginCode == "" || u.MfaLoginCode != code ||
		u.MfaLoginCodeExp == nil || u.MfaLoginCodeExp.Before(time.Now()) {
		return false, nil
	}
	u.MfaLoginCode = ""
	u.MfaLoginCodeExp = nil
	return true, nil
}

func (f *fakeUserRepo) StoreSetupCode(userID, code string, expiresAt time.Time) error {
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.MfaSetupCode = code
	u.MfaSetupCodeExp = &expiresAt
	return nil
}

func (f *fakeUserRepo) ConsumeSetupCode(userID, code string) (bool, error) {
	u, ok := f.users[userID]
	if !ok {
		return false, nil
	}
	if u.MfaSetupCode == "" || u.MfaSetupCode != code ||
		u.MfaSetupCodeExp == nil || u.MfaSetupCodeExp.Before(time.Now()) {
		return false, nil
	}
	u.MfaEnabled = true
	u.MfaSetupCode = ""
	u.MfaSetupCodeExp = nil
	return true, nil
}

func (f *fakeUserRepo) StoreResetCode(userID, code string, expiresAt time.Time) error {
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.ResetCode = code
	u.ResetCodeExp = &expiresAt
	return nil
}

func (f *fakeUserRepo) ConsumeResetCode(userID, code, newPasswordHash string) (bool, error) {
	u, ok := f.users[userID]
	if !ok {
		return false, nil
	}
	if u.ResetCode == "" || u.ResetCode != code ||
		u.ResetCodeExp == nil || u.ResetCodeExp.Before(time.Now()) {
		return false, nil
	}
	u.PasswordHash = newPasswordHash
	u.ResetCode = ""
	u.ResetCodeExp = nil
	return true, nil
}

func (f *fakeUserRepo) AddToWishlist(userID, productID string) error {
	if f.wishlist[userID] == nil {
		f.wishlist[userID] = make(map[string]bool)
	}
	f.wishlist[userID][productID] = true
	return nil
}

func (f *fakeUserRepo) RemoveFromWishlist(userID, productID string) error {
	delete(f.wishlist[userID], productID)
	return nil
}

func (f *fakeUserRepo) GetWishlist(userID string) ([]models.Product, error) {
	out := []models.Product{}
	for productID := range f.wishlist[userID] {
		out = append(out, models.Product{
			BaseModelWithDeleted: models.BaseModelWithDeleted{
				BaseModel: models.BaseModel{ID: productID},
			},
		})
	}
	return out, nil
}

func (f *fakeUserRepo) CreateAddress(address *models.ShippingAddress) error {
	if address.IsDefault {
		for _, a := range f.addresses {
			if a.UserID == address.UserID {
				a.IsDefault = false
			}
		}
	}
	f.nextID++
	address.ID = fmt.Sprintf("a%d", f.nextID)
	copied := *address
	f.addresses[address.ID] = &copied
	return nil
}

func (f *fakeUserRepo) ListAddresses(userID string) ([]models.ShippingAddress, error) {
	out := []models.ShippingAddress{}
	for _, a := range f.addresses {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) DeleteAddress(userID, addressID string) error {
	a, ok := f.addresses[addressID]
	if !ok || a.UserID != userID {
		return repositories.ErrAddressNotFound
	}
	delete(f.addresses, addressID)
	return nil
}

type fakeProductRepo struct {
	products map[string]*models.Product
	nextID   int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*models.Product)}
}

func (f *fakeProductRepo) Create(product *models.Product) error {
	f.nextID++
	product.ID = fmt.Sprintf("p%d", f.nextID)
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeProductRepo) FindByID(id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, repositories.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProductRepo) Update(productID string, fields map[string]interface{}) error {
	p, ok := f.products[productID]
	if !ok {
		return repositories.ErrProductNotFound
	}
	if v, ok := fields["name"]; ok {
		p.Name = v.(string)
	}
	if v, ok := fields["price"]; ok {
		p.Price = v.(float64)
	}
	if v, ok := fields["stock"]; ok {
		p.Stock = v.(int)
	}
	if v, ok := fields["category"]; ok {
		p.Category = v.(string)
	}
	if v, ok := fields["description"]; ok {
		p.Description = v.(string)
	}
	return nil
}

func (f *fakeProductRepo) Delete(productID string) error {
	if _, ok := f.products[productID]; !ok {
		return repositories.ErrProductNotFound
	}
	delete(f.products, productID)
	return nil
}

func (f *fakeProductRepo) FindWithFilter(criteria repositories.ProductFilter) ([]models.Product, int64, error) {
	var out []models.Product
	for _, p := range f.products {
		if criteria.Category != "" && p.Category != criteria.Category {
			continue
		}
		if criteria.Search != "" && !strings.Contains(p.Name, criteria.Search) {
			continue
		}
		if criteria.InStock && p.Stock <= 0 {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProductRepo) ListCategories() ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range f.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out, nil
}

type fakeOrderRepo struct {
	orders   map[string]*models.Order
	products *fakeProductRepo
	nextID   int
}

func newFakeOrderRepo(products *fakeProductRepo) *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:   make(map[string]*models.Order),
		products: products,
	}
}

func (f *fakeOrderRepo) CreateWithStockDecrement(order *models.Order) error {
	// All-or-nothing, like the SQL transaction.
	for _, item := range order.Items {
		p, ok := f.products.products[item.ProductID]
		if !ok || p.Stock < item.Quantity {
			return repositories.ErrInsufficientStock
		}
	}
	for _, item := range order.Items {
		f.products.products[item.ProductID].Stock -= item.Quantity
	}

	f.nextID++
	order.ID = fmt.Sprintf("o%d", f.nextID)
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeOrderRepo) FindByID(id string) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, repositories.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrderRepo) FindByUser(userID string, limit, offset int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) FindAll(limit, offset int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) UpdateStatus(orderID string, status models.OrderStatus) error {
	o, ok := f.orders[orderID]
	if !ok {
		return repositories.ErrOrderNotFound
	}
	if status == models.OrderStatusCancelled {
		for _, item := range o.Items {
			if p, ok := f.products.products[item.ProductID]; ok {
				p.Stock += item.Quantity
			}
		}
	}
	o.Status = status
	return nil
}

func (f *fakeOrderRepo) HasDeliveredOrderWithProduct(userID, productID string) (bool, error) {
	for _, o := range f.orders {
		if o.UserID != userID || o.Status != models.OrderStatusDelivered {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeReviewRepo struct {
	reviews map[string]*models.Review
	nextID  int
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[string]*models.Review)}
}

func (f *fakeReviewRepo) Create(review *models.Review) error {
	for _, r := range f.reviews {
		if r.UserID == review.UserID && r.ProductID == review.ProductID {
			return repositories.ErrReviewExists
		}
	}
	f.nextID++
	review.ID = fmt.Sprintf("r%d", f.nextID)
	copied := *review
	f.reviews[review.ID] = &copied
	return nil
}

func (f *fakeReviewRepo) FindByID(id string) (*models.Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return nil, repositories.ErrReviewNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReviewRepo) FindByProduct(productID string, limit, offset int) ([]models.Review, int64, error) {
	var out []models.Review
	for _, r := range f.reviews {
		if r.ProductID == productID {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReviewRepo) FindByUserAndProduct(userID, productID string) (*models.Review, error) {
	for _, r := range f.reviews {
		if r.UserID == userID && r.ProductID == productID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, repositories.ErrReviewNotFound
}

func (f *fakeReviewRepo) Delete(reviewID string) error {
	if _, ok := f.reviews[reviewID]; !ok {
		return repositories.ErrReviewNotFound
	}
	delete(f.reviews, reviewID)
	return nil
}

func (f *fakeReviewRepo) AverageRating(productID string) (float64, int64, error) {
	var sum, count int64
	for _, r := range f.reviews {
		if r.ProductID == productID {
			sum += int64(r.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

// fakeEmailProvider records sent mail and can be told to fail.
type fakeEmailProvider struct {
	sent    []*email.Email
	failing bool
}

func (f *fakeEmailProvider) Send(e *email.Email) error {
	if f.failing {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, e)
	return nil
}

func (f *fakeEmailProvider) Validate() error { return nil }
func (f *fakeEmailProvider) Close() error    { return nil }

func (f *fakeEmailProvider) lastBody() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].Body
}
