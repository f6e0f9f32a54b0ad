package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus_fleet/internal/apperror"
	"campus_fleet/internal/models"
)

// GormRepository implements Repository on a Postgres gorm handle.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

type txKey struct{}

// WithTx runs fn inside a transaction. Repository calls made with the
// context fn receives join that transaction; nesting reuses the outer
// one.
func (r *GormRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (r *GormRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *GormRepository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.conn(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("requester not found")
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormRepository) GetDriver(ctx context.Context, id uint) (*models.Driver, error) {
	return r.getDriver(r.conn(ctx), id)
}

func (r *GormRepository) GetDriverForUpdate(ctx context.Context, id uint) (*models.Driver, error) {
	return r.getDriver(r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormRepository) getDriver(db *gorm.DB, id uint) (*models.Driver, error) {
	var d models.Driver
	if err := db.First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("driver not found")
		}
		return nil, err
	}
	return &d, nil
}

func (r *GormRepository) GetVehicleForUpdate(ctx context.Context, id uint) (*models.Vehicle, error) {
	var v models.Vehicle
	err := r.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&v, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("vehicle not found")
		}
		return nil, err
	}
	return &v, nil
}

func (r *GormRepository) GetReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.conn(ctx).First(&res, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("reservation not found")
		}
		return nil, err
	}
	return &res, nil
}

func (r *GormRepository) CountOverlapping(ctx context.Context, kind ResourceKind, resourceID uint, date time.Time, start, end string, excludeID uint) (int64, error) {
	q := r.conn(ctx).Model(&models.Reservation{}).
		Where("date = ?", dateOnly(date)).
		Where("state IN ?", activeStates).
		// Inclusive boundary overlap: four BETWEEN comparisons, so a
		// window ending exactly when another begins still conflicts.
		Where("(start_time BETWEEN ? AND ?) OR (end_time BETWEEN ? AND ?) OR (? BETWEEN start_time AND end_time) OR (? BETWEEN start_time AND end_time)",
			start, end, start, end, start, end)

	switch kind {
	case ResourceDriver:
		q = q.Where("driver_id = ?", resourceID)
	default:
		q = q.Where("vehicle_id = ?", resourceID)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormRepository) Create(ctx context.Context, res *models.Reservation) error {
	if err := r.conn(ctx).Create(res).Error; err != nil {
		if isUniqueViolation(err) {
			// Callers must not be able to distinguish losing the race
			// from failing the pre-check.
			return apperror.Conflict("reservation conflicts with an existing booking")
		}
		return err
	}
	return nil
}

func (r *GormRepository) UpdateGuarded(ctx context.Context, id uint, allowed []models.ReservationState, updates map[string]interface{}) (int64, error) {
	result := r.conn(ctx).Model(&models.Reservation{}).
		Where("id = ? AND state IN ?", id, allowed).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *GormRepository) ListBetween(ctx context.Context, from, to time.Time, vehicleID uint) ([]models.Reservation, error) {
	q := r.conn(ctx).
		Where("date BETWEEN ? AND ?", dateOnly(from), dateOnly(to)).
		Order("date, start_time")
	if vehicleID != 0 {
		q = q.Where("vehicle_id = ?", vehicleID)
	}
	var out []models.Reservation
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepository) List(ctx context.Context, f ListFilter) ([]models.Reservation, int64, error) {
	q := r.conn(ctx).Model(&models.Reservation{})
	if f.RequesterID != 0 {
		q = q.Where("requester_id = ?", f.RequesterID)
	}
	if f.VehicleID != 0 {
		q = q.Where("vehicle_id = ?", f.VehicleID)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size < 1 || size > 100 {
		size = 20
	}

	var out []models.Reservation
	err := q.Order("date DESC, start_time").
		Offset((page - 1) * size).
		Limit(size).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// isUniqueViolation detects a Postgres unique-constraint failure. The
// concrete error type depends on the driver in use, so both the gorm
// translation and the raw pq code are checked.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
