package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/Abel-cordero/ORDEN/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Registry owns durable storage of customers and orders and is the only
// authority allowed to issue order numbers. Numbering policy for this
// deployment: year-scoped, formatted as PREFIX-YYYY-NNNNN, counter reset at
// the first order of each calendar year.
type Registry struct {
	db     *gorm.DB
	prefix string
	now    func() time.Time
}

const maxAllocAttempts = 5

// Open connects to the configured database. A plain path (the default) is
// treated as a SQLite file; postgres DSNs are accepted for shops that run a
// shared server instead.
func Open(databaseURL, prefix string) (*Registry, error) {
	var (
		db  *gorm.DB
		err error
	)
	if isPostgresDSN(databaseURL) {
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	} else {
		dsn := databaseURL
		if !strings.Contains(dsn, "?") {
			// Two app instances may share the file; wait out the
			// writer instead of failing on the first busy error.
			dsn += "?_busy_timeout=5000&_journal_mode=WAL"
		}
		db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		if err == nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				sqlDB.SetMaxOpenConns(1)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return New(db, prefix), nil
}

// New wraps an already-open connection. Used directly by tests.
func New(db *gorm.DB, prefix string) *Registry {
	if prefix == "" {
		prefix = "CS"
	}
	return &Registry{db: db, prefix: prefix, now: time.Now}
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// EnsureSchema creates or additively migrates the tables and indexes. Safe to
// run on every startup; never drops columns or data.
func (r *Registry) EnsureSchema() error {
	err := r.db.AutoMigrate(
		&models.Customer{},
		&models.Equipment{},
		&models.ServiceOrder{},
		&models.OrderSequence{},
	)
	if err != nil {
		return &CorruptionError{Err: err}
	}
	return nil
}

// RegisterCustomer inserts a new customer and returns its id. Name and phone
// are mandatory. No deduplication happens here; use FindCustomers first if
// the front desk wants to reuse an existing record.
func (r *Registry) RegisterCustomer(req models.RegisterCustomerRequest) (uint, error) {
	if strings.TrimSpace(req.FullName) == "" {
		return 0, missing("full_name")
	}
	if strings.TrimSpace(req.Phone) == "" {
		return 0, missing("phone")
	}

	customer := models.Customer{
		FullName:   strings.TrimSpace(req.FullName),
		Address:    strings.TrimSpace(req.Address),
		Phone:      strings.TrimSpace(req.Phone),
		NationalID: strings.TrimSpace(req.NationalID),
	}
	if err := r.db.Create(&customer).Error; err != nil {
		return 0, fmt.Errorf("create customer: %w", err)
	}
	return customer.ID, nil
}

// FindCustomers looks customers up by phone and/or national id so the front
// desk can reuse a record instead of registering a duplicate.
func (r *Registry) FindCustomers(phone, nationalID string) ([]models.Customer, error) {
	q := r.db.Model(&models.Customer{})
	if phone != "" {
		q = q.Where("phone = ?", phone)
	}
	if nationalID != "" {
		q = q.Where("national_id = ?", nationalID)
	}
	var customers []models.Customer
	if err := q.Order("id").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("find customers: %w", err)
	}
	return customers, nil
}

func (r *Registry) GetCustomer(id uint) (models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Customer{}, ErrNotFound
		}
		return models.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return customer, nil
}

// AllocateOrderNumber issues the next number for the current year in its own
// transaction. A crash between this call and the insert leaves a gap in the
// sequence, which is fine; a collision is not possible because the counter
// bump commits before the number is handed out. CreateOrder does allocation
// and insert together and should be preferred.
func (r *Registry) AllocateOrderNumber() (string, error) {
	var number string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var allocErr error
		number, allocErr = r.nextNumber(tx, r.now())
		return allocErr
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

// nextNumber bumps the year counter inside tx and formats the number. The
// caller's transaction decides whether the bump survives.
func (r *Registry) nextNumber(tx *gorm.DB, at time.Time) (string, error) {
	year := at.Year()
	var seq models.OrderSequence
	err := tx.Where("year = ?", year).First(&seq).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		seq = models.OrderSequence{Year: year, Counter: 1}
		if err := tx.Create(&seq).Error; err != nil {
			return "", err
		}
	case err != nil:
		return "", err
	default:
		seq.Counter++
		if err := tx.Model(&seq).Update("counter", seq.Counter).Error; err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%s-%d-%05d", r.prefix, year, seq.Counter), nil
}

// CreateOrder validates the intake, allocates the next order number and
// persists equipment plus order in one transaction, so a failure burns no
// number. Concurrent creators are kept apart by the unique index on the
// number column: on a conflict or a locked database the whole unit is
// retried with backoff, and after maxAllocAttempts the caller gets
// ErrStorageBusy and can retry the call itself.
func (r *Registry) CreateOrder(req models.IntakeRequest) (string, error) {
	if strings.TrimSpace(req.Fault) == "" {
		return "", missing("fault")
	}
	if strings.TrimSpace(req.EquipmentType) == "" {
		return "", missing("equipment_type")
	}
	if _, err := r.GetCustomer(req.CustomerID); err != nil {
		return "", err
	}

	for attempt := 0; attempt < maxAllocAttempts; attempt++ {
		if req.IdempotencyKey != "" {
			if number, ok := r.findByIdempotencyKey(req.IdempotencyKey); ok {
				return number, nil
			}
		}

		number, err := r.createOrderOnce(req)
		if err == nil {
			return number, nil
		}
		if !isRetryable(err) {
			return "", fmt.Errorf("create order: %w", err)
		}
		slog.Warn("order creation contended, retrying",
			"attempt", attempt+1, "error", err)
		time.Sleep(backoff(attempt))
	}
	return "", ErrStorageBusy
}

func (r *Registry) createOrderOnce(req models.IntakeRequest) (string, error) {
	var number string
	now := r.now()
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var allocErr error
		number, allocErr = r.nextNumber(tx, now)
		if allocErr != nil {
			return allocErr
		}

		equipment := models.Equipment{
			Type:         strings.TrimSpace(req.EquipmentType),
			Brand:        strings.TrimSpace(req.Brand),
			Model:        strings.TrimSpace(req.Model),
			SerialNumber: strings.TrimSpace(req.SerialNumber),
		}
		if err := tx.Create(&equipment).Error; err != nil {
			return err
		}

		order := models.ServiceOrder{
			Number:       number,
			CustomerID:   req.CustomerID,
			EquipmentID:  equipment.ID,
			Fault:        strings.TrimSpace(req.Fault),
			Diagnosis:    strings.TrimSpace(req.Diagnosis),
			Resolution:   strings.TrimSpace(req.Resolution),
			Status:       models.StatusIngested,
			IntakeAt:     now,
			Technician:   strings.TrimSpace(req.Technician),
			LaborCost:    req.LaborCost,
			PartsCost:    req.PartsCost,
			WarrantyDays: req.WarrantyDays,
			Notes:        req.Notes,
		}
		if req.IdempotencyKey != "" {
			key := req.IdempotencyKey
			order.IdempotencyKey = &key
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

func (r *Registry) findByIdempotencyKey(key string) (string, bool) {
	var order models.ServiceOrder
	if err := r.db.Where("idempotency_key = ?", key).First(&order).Error; err != nil {
		return "", false
	}
	return order.Number, true
}

// FetchOrderDetail joins the order with its customer and equipment into the
// flat read model the renderer consumes.
func (r *Registry) FetchOrderDetail(number string) (models.OrderDetail, error) {
	order, err := r.getOrder(number)
	if err != nil {
		return models.OrderDetail{}, err
	}
	return models.OrderDetail{
		Number:       order.Number,
		IntakeAt:     order.IntakeAt,
		DeliveredAt:  order.DeliveredAt,
		Status:       order.Status,
		Technician:   order.Technician,
		CustomerName: order.Customer.FullName,
		Address:      order.Customer.Address,
		Phone:        order.Customer.Phone,
		NationalID:   order.Customer.NationalID,
		Type:         order.Equipment.Type,
		Brand:        order.Equipment.Brand,
		Model:        order.Equipment.Model,
		SerialNumber: order.Equipment.SerialNumber,
		Fault:        order.Fault,
		Diagnosis:    order.Diagnosis,
		Resolution:   order.Resolution,
		LaborCost:    order.LaborCost,
		PartsCost:    order.PartsCost,
		TotalCost:    order.LaborCost + order.PartsCost,
		WarrantyDays: order.WarrantyDays,
		Notes:        order.Notes,
	}, nil
}

func (r *Registry) getOrder(number string) (models.ServiceOrder, error) {
	var order models.ServiceOrder
	err := r.db.Preload("Customer").Preload("Equipment").
		Where("number = ?", number).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ServiceOrder{}, ErrNotFound
		}
		return models.ServiceOrder{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// UpdateStatus moves the order forward through the repair workflow. Moving to
// an earlier stage is rejected. Entregado stamps the delivery timestamp.
func (r *Registry) UpdateStatus(number string, status models.Status) error {
	if !status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}
	order, err := r.getOrder(number)
	if err != nil {
		return err
	}
	if status.Rank() < order.Status.Rank() {
		return &ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("cannot move back from %q to %q", order.Status, status),
		}
	}

	updates := map[string]any{"status": status}
	if status == models.StatusDelivered && order.DeliveredAt == nil {
		updates["delivered_at"] = r.now()
	}
	if err := r.db.Model(&order).Updates(updates).Error; err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// UpdateOrder fills in diagnosis, resolution, costs and the rest of the
// fields the technician completes during the repair. Empty fields in the
// request leave the stored value untouched.
func (r *Registry) UpdateOrder(number string, req models.UpdateOrderRequest) error {
	order, err := r.getOrder(number)
	if err != nil {
		return err
	}

	updates := map[string]any{}
	if req.Diagnosis != "" {
		updates["diagnosis"] = req.Diagnosis
	}
	if req.Resolution != "" {
		updates["resolution"] = req.Resolution
	}
	if req.Technician != "" {
		updates["technician"] = req.Technician
	}
	if req.LaborCost != nil {
		updates["labor_cost"] = *req.LaborCost
	}
	if req.PartsCost != nil {
		updates["parts_cost"] = *req.PartsCost
	}
	if req.WarrantyDays != nil {
		updates["warranty_days"] = *req.WarrantyDays
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.Model(&order).Updates(updates).Error; err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

// ListOrders returns the history view, newest intake first.
func (r *Registry) ListOrders(filter models.OrderFilter) ([]models.ServiceOrder, int64, error) {
	q := r.db.Model(&models.ServiceOrder{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	var orders []models.ServiceOrder
	err := q.Preload("Customer").Preload("Equipment").
		Order("intake_at DESC").Limit(limit).Offset(filter.Offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// isRetryable classifies driver errors worth another allocation attempt:
// transient lock contention, or a unique-index conflict on the number column
// caused by a concurrent allocator that committed first.
func isRetryable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "SQLSTATE 40001")
}

func backoff(attempt int) time.Duration {
	base := time.Duration(attempt+1) * 25 * time.Millisecond
	return base + time.Duration(rand.Intn(25))*time.Millisecond
}
