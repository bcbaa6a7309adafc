// internal/tests/memstore_test.go
package tests

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/kisanexport/storefront/internal/models"
	"github.com/kisanexport/storefront/internal/repository"
	"github.com/kisanexport/storefront/internal/router"
	"github.com/kisanexport/storefront/internal/utils"
)

// memStore keeps every aggregate in maps and mimics the postgres
// repositories closely enough for HTTP tests. Values are copied in and
// out so handlers never share memory with the store.
type memStore struct {
	mu         sync.Mutex
	clock      time.Time
	categories map[uuid.UUID]models.Category
	products   map[uuid.UUID]models.Product
	orders     map[uuid.UUID]models.Order
	users      map[uuid.UUID]models.User
	imports    map[uuid.UUID]models.ImportProduct
	audit      []models.AuditLog
}

func newMemStore() *memStore {
	return &memStore{
		clock:      time.Now().Add(-time.Hour),
		categories: make(map[uuid.UUID]models.Category),
		products:   make(map[uuid.UUID]models.Product),
		orders:     make(map[uuid.UUID]models.Order),
		users:      make(map[uuid.UUID]models.User),
		imports:    make(map[uuid.UUID]models.ImportProduct),
	}
}

func (s *memStore) repositories() router.Repositories {
	return router.Repositories{
		Categories:     &memCategories{s},
		Products:       &memProducts{s},
		Orders:         &memOrders{s},
		Users:          &memUsers{s},
		ImportProducts: &memImports{s},
		AuditLogs:      &memAudit{s},
	}
}

// stamp assigns an id and strictly increasing timestamps. Callers hold mu.
func (s *memStore) stamp(base *models.BaseModel) {
	s.clock = s.clock.Add(time.Millisecond)
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	base.CreatedAt = s.clock
	base.UpdatedAt = s.clock
}

func (s *memStore) touch(base *models.BaseModel) {
	s.clock = s.clock.Add(time.Millisecond)
	base.UpdatedAt = s.clock
}

func (s *memStore) auditCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.audit)
}

func paginate[T any](items []T, params utils.PaginationParams) []T {
	if params.Limit <= 0 {
		return items
	}
	start := (params.Page - 1) * params.Limit
	if start >= len(items) {
		return []T{}
	}
	end := start + params.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

type memCategories struct{ s *memStore }

func (r *memCategories) Create(ctx context.Context, category *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&category.BaseModel)
	r.s.categories[category.ID] = *category
	return nil
}

func (r *memCategories) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	category, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return &category, nil
}

func (r *memCategories) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, category := range r.s.categories {
		if category.Slug == slug {
			return &category, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (r *memCategories) List(ctx context.Context, filter repository.CategoryFilter) ([]models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Category{}
	for _, category := range r.s.categories {
		if filter.ActiveOnly && !category.IsActive() {
			continue
		}
		if filter.Featured != nil && category.Featured != *filter.Featured {
			continue
		}
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memCategories) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Category, error) {
	r.s.mu.Lock()
	category, ok := r.s.categories[id]
	if !ok {
		r.s.mu.Unlock()
		return nil, repository.ErrCategoryNotFound
	}
	for column, value := range updates {
		switch column {
		case "name":
			category.Name = value.(string)
		case "slug":
			category.Slug = value.(string)
		case "image":
			category.Image = value.(string)
		case "featured":
			category.Featured = value.(bool)
		case "status":
			category.Status = value.(models.CatalogStatus)
		default:
			panic("memCategories: unhandled column " + column)
		}
	}
	r.s.touch(&category.BaseModel)
	r.s.categories[id] = category
	r.s.mu.Unlock()
	return r.FindByID(ctx, id)
}

func (r *memCategories) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	for _, product := range r.s.products {
		if product.CategoryID == id {
			return repository.ErrReferenced
		}
	}
	delete(r.s.categories, id)
	return nil
}

type memProducts struct{ s *memStore }

// hydrate mirrors the Preload("Category") plus AfterFind path. Callers hold mu.
func (r *memProducts) hydrate(product models.Product) models.Product {
	product.Images = append(pq.StringArray(nil), product.Images...)
	product.Variants = append(models.Variants(nil), product.Variants...)
	if category, ok := r.s.categories[product.CategoryID]; ok {
		product.Category = &category
	}
	product.Hydrate()
	return product
}

func (r *memProducts) Create(ctx context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[product.CategoryID]; !ok {
		return repository.ErrReferenced
	}
	r.s.stamp(&product.BaseModel)
	product.PrimaryImage = models.PrimaryImageOf(product.Images)
	r.s.products[product.ID] = *product
	*product = r.hydrate(*product)
	return nil
}

func (r *memProducts) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	product, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	product = r.hydrate(product)
	return &product, nil
}

func (r *memProducts) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, product := range r.s.products {
		if product.Slug == slug {
			product = r.hydrate(product)
			return &product, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (r *memProducts) List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Product{}
	for _, product := range r.s.products {
		switch {
		case filter.ActiveOnly && !product.IsActive():
			continue
		case !filter.ActiveOnly && filter.Status != "" && product.Status != filter.Status:
			continue
		case filter.CategoryID != nil && product.CategoryID != *filter.CategoryID:
			continue
		case filter.CategorySlug != "" && r.s.categories[product.CategoryID].Slug != filter.CategorySlug:
			continue
		case filter.Featured != nil && product.Featured != *filter.Featured:
			continue
		}
		if search := strings.TrimSpace(filter.Search); search != "" &&
			!containsFold(product.Name, search) && !containsFold(product.Description, search) && !containsFold(product.HSCode, search) {
			continue
		}
		out = append(out, r.hydrate(product))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, filter.Pagination), int64(len(out)), nil
}

func (r *memProducts) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Product, error) {
	r.s.mu.Lock()
	product, ok := r.s.products[id]
	if !ok {
		r.s.mu.Unlock()
		return nil, repository.ErrProductNotFound
	}
	for column, value := range updates {
		switch column {
		case "name":
			product.Name = value.(string)
		case "slug":
			product.Slug = value.(string)
		case "description":
			product.Description = value.(string)
		case "category_id":
			product.CategoryID = value.(uuid.UUID)
		case "hs_code":
			product.HSCode = value.(string)
		case "min_order_qty":
			product.MinOrderQty = value.(string)
		case "selling_price":
			product.SellingPrice = value.(decimal.Decimal)
		case "discounted_price":
			product.DiscountedPrice = value.(decimal.Decimal)
		case "variants":
			product.Variants = value.(models.Variants)
		case "images":
			product.Images = value.(pq.StringArray)
		case "primary_image":
			product.PrimaryImage = value.(string)
		case "featured":
			product.Featured = value.(bool)
		case "status":
			product.Status = value.(models.CatalogStatus)
		default:
			panic("memProducts: unhandled column " + column)
		}
	}
	r.s.touch(&product.BaseModel)
	r.s.products[id] = product
	r.s.mu.Unlock()
	return r.FindByID(ctx, id)
}

func (r *memProducts) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r *memProducts) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, product := range r.s.products {
		if product.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

type memOrders struct{ s *memStore }

func (r *memOrders) copyOut(order models.Order) *models.Order {
	order.Items = append(models.OrderItems(nil), order.Items...)
	order.NextStatuses = order.Status.NextStatuses()
	return &order
}

func (r *memOrders) CreateIdempotent(ctx context.Context, order *models.Order) (*models.Order, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if order.IdempotencyKey != nil {
		for _, existing := range r.s.orders {
			if existing.IdempotencyKey != nil && *existing.IdempotencyKey == *order.IdempotencyKey {
				return r.copyOut(existing), false, nil
			}
		}
	}
	r.s.stamp(&order.BaseModel)
	stored := *order
	stored.Items = append(models.OrderItems(nil), order.Items...)
	r.s.orders[order.ID] = stored
	return r.copyOut(stored), true, nil
}

func (r *memOrders) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return r.copyOut(order), nil
}

func (r *memOrders) FindByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, order := range r.s.orders {
		if order.IdempotencyKey != nil && *order.IdempotencyKey == key {
			return r.copyOut(order), nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (r *memOrders) sorted(keep func(models.Order) bool) []models.Order {
	out := []models.Order{}
	for _, order := range r.s.orders {
		if keep(order) {
			out = append(out, *r.copyOut(order))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memOrders) List(ctx context.Context, filter repository.OrderFilter) ([]models.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.sorted(func(o models.Order) bool {
		return (filter.Status == "" || o.Status == filter.Status) &&
			(filter.UserID == nil || o.UserID == *filter.UserID)
	})
	return paginate(out, filter.Pagination), int64(len(out)), nil
}

func (r *memOrders) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *memOrders) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	if order.Status != from {
		return nil, repository.ErrStaleStatus
	}
	order.Status = to
	r.s.touch(&order.BaseModel)
	r.s.orders[id] = order
	return r.copyOut(order), nil
}

func (r *memOrders) SumPaidTotal(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, order := range r.s.orders {
		if order.PaymentStatus == models.PaymentStatusPaid && !order.CreatedAt.Before(since) {
			sum = sum.Add(order.Total)
		}
	}
	return sum, nil
}

func (r *memOrders) Count(ctx context.Context, since time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, order := range r.s.orders {
		if !order.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *memOrders) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[models.OrderStatus]int64, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		counts[status] = 0
	}
	for _, order := range r.s.orders {
		counts[order.Status]++
	}
	return counts, nil
}

type memUsers struct{ s *memStore }

func (r *memUsers) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == user.Email || existing.UserID == user.UserID {
			return repository.ErrDuplicateKey
		}
	}
	r.s.stamp(&user.BaseModel)
	r.s.users[user.ID] = *user
	return nil
}

func (r *memUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

func (r *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Email == strings.ToLower(email) {
			return &user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUsers) ListByRole(ctx context.Context, role models.UserRole, params utils.PaginationParams) ([]models.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.User{}
	for _, user := range r.s.users {
		if user.Role != role {
			continue
		}
		if params.Search != "" && !containsFold(user.Name, params.Search) && !containsFold(user.Email, params.Search) {
			continue
		}
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, params), int64(len(out)), nil
}

func (r *memUsers) CountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, user := range r.s.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

func (r *memUsers) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.LastLoginAt = &at
	r.s.users[id] = user
	return nil
}

func (r *memUsers) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

type memImports struct{ s *memStore }

func (r *memImports) Create(ctx context.Context, item *models.ImportProduct) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&item.BaseModel)
	r.s.imports[item.ID] = *item
	return nil
}

func (r *memImports) FindByID(ctx context.Context, id uuid.UUID) (*models.ImportProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.imports[id]
	if !ok {
		return nil, repository.ErrImportProductNotFound
	}
	return &item, nil
}

func (r *memImports) List(ctx context.Context) ([]models.ImportProduct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.ImportProduct{}
	for _, item := range r.s.imports {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memImports) Save(ctx context.Context, item *models.ImportProduct) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.imports[item.ID]; !ok {
		return repository.ErrImportProductNotFound
	}
	r.s.touch(&item.BaseModel)
	r.s.imports[item.ID] = *item
	return nil
}

func (r *memImports) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.imports[id]; !ok {
		return repository.ErrImportProductNotFound
	}
	delete(r.s.imports, id)
	return nil
}

type memAudit struct{ s *memStore }

func (r *memAudit) Create(ctx context.Context, entry *models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&entry.BaseModel)
	r.s.audit = append(r.s.audit, *entry)
	return nil
}
