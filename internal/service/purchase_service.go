package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mkurbatov/lessonhub-api/internal/catalog"
	"github.com/mkurbatov/lessonhub-api/internal/dto"
	"github.com/mkurbatov/lessonhub-api/internal/models"
	appErrors "github.com/mkurbatov/lessonhub-api/pkg/errors"
)

// PurchaseClassRepository covers class persistence for purchases.
type PurchaseClassRepository interface {
	Create(ctx context.Context, class *models.Class) error
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, class *models.Class) error
	ListByCustomer(ctx context.Context, customerID string) ([]models.Class, error)
	ListBySubscription(ctx context.Context, subscriptionID string) ([]models.Class, error)
	UnscheduledLessonTypes(ctx context.Context, customerID string) ([]models.LessonType, error)
	SetActiveBySubscriptionWithTx(ctx context.Context, tx *sqlx.Tx, subscriptionID string, active bool) error
}

// PurchaseSubscriptionRepository covers subscription persistence for
// purchases.
type PurchaseSubscriptionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Subscription, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Subscription, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, sub *models.Subscription) error
	SetActiveWithTx(ctx context.Context, tx *sqlx.Tx, id string, active bool) error
}

// PurchaseCustomerRepository resolves customer references.
type PurchaseCustomerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Customer, error)
}

// PurchaseService creates entitlements from purchases. A subscription
// purchase provisions one class per lesson unit of its product, exactly once,
// at creation time; later subscription updates never re-provision.
type PurchaseService struct {
	db           txProvider
	classRepo    PurchaseClassRepository
	subRepo      PurchaseSubscriptionRepository
	customerRepo PurchaseCustomerRepository
	products     catalog.ProductCatalog
	registry     *catalog.Registry
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewPurchaseService constructs a purchase service.
func NewPurchaseService(
	db txProvider,
	classRepo PurchaseClassRepository,
	subRepo PurchaseSubscriptionRepository,
	customerRepo PurchaseCustomerRepository,
	products catalog.ProductCatalog,
	registry *catalog.Registry,
	validate *validator.Validate,
	logger *zap.Logger,
) *PurchaseService {
	if validate == nil {
		validate = validator.New()
	}
	return &PurchaseService{
		db:           db,
		classRepo:    classRepo,
		subRepo:      subRepo,
		customerRepo: customerRepo,
		products:     products,
		registry:     registry,
		validator:    validate,
		logger:       logger,
	}
}

// BuyClass records a single-lesson purchase.
func (s *PurchaseService) BuyClass(ctx context.Context, req dto.BuyClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid purchase payload")
	}
	if err := s.checkCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	lessonType := models.LessonType(req.LessonType)
	if _, ok := s.registry.ByType(lessonType); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown lesson type")
	}

	class := &models.Class{
		CustomerID: req.CustomerID,
		LessonType: lessonType,
		BuyPrice:   req.Price,
		BuySource:  models.BuySourceSingle,
		Active:     true,
	}
	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	s.logger.Info("class purchased",
		zap.String("class_id", class.ID),
		zap.String("customer_id", req.CustomerID),
		zap.String("lesson_type", string(lessonType)))
	return class, nil
}

// BuySubscription records a bundle purchase and provisions its classes in
// the same transaction.
func (s *PurchaseService) BuySubscription(ctx context.Context, req dto.BuySubscriptionRequest) (sub *models.Subscription, classes []models.Class, err error) {
	if err = s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid purchase payload")
	}
	if err = s.checkCustomer(ctx, req.CustomerID); err != nil {
		return nil, nil, err
	}
	product, ok := s.products.Product(req.ProductID)
	if !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "product not found")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin purchase transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	sub = &models.Subscription{
		CustomerID: req.CustomerID,
		ProductID:  product.ID,
		BuyPrice:   req.Price,
		Active:     true,
	}
	if err = s.subRepo.CreateWithTx(ctx, tx, sub); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subscription")
	}

	for _, grant := range product.Grants {
		for i := 0; i < grant.Units; i++ {
			class := models.Class{
				CustomerID:     req.CustomerID,
				LessonType:     grant.LessonType,
				BuyPrice:       req.Price,
				BuySource:      models.BuySourceSubscription,
				SubscriptionID: &sub.ID,
				Active:         sub.Active,
			}
			if err = s.classRepo.CreateWithTx(ctx, tx, &class); err != nil {
				return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to provision class")
			}
			classes = append(classes, class)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit purchase")
	}

	s.logger.Info("subscription purchased",
		zap.String("subscription_id", sub.ID),
		zap.String("customer_id", req.CustomerID),
		zap.String("product_id", product.ID),
		zap.Int("classes_provisioned", len(classes)))
	return sub, classes, nil
}

// SetSubscriptionActive toggles a subscription and cascades the flag onto
// the classes it provisioned. The comparison runs against the stored value so
// a repeated call with the same flag is a no-op, not a second cascade.
func (s *PurchaseService) SetSubscriptionActive(ctx context.Context, subscriptionID string, active bool) (sub *models.Subscription, err error) {
	sub, err = s.subRepo.FindByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subscription not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subscription")
	}
	if sub.Active == active {
		return sub, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin subscription transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.subRepo.SetActiveWithTx(ctx, tx, subscriptionID, active); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subscription")
	}
	if err = s.classRepo.SetActiveBySubscriptionWithTx(ctx, tx, subscriptionID, active); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cascade active flag")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit subscription update")
	}

	sub.Active = active
	s.logger.Info("subscription active flag changed",
		zap.String("subscription_id", subscriptionID),
		zap.Bool("active", active))
	return sub, nil
}

// BoughtLessonTypes returns the listed lesson kinds the customer still has
// unscheduled active classes for, in listing order.
func (s *PurchaseService) BoughtLessonTypes(ctx context.Context, customerID string) ([]models.LessonDescriptor, error) {
	if err := s.checkCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	types, err := s.classRepo.UnscheduledLessonTypes(ctx, customerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bought lesson types")
	}

	owned := make(map[models.LessonType]struct{}, len(types))
	for _, t := range types {
		owned[t] = struct{}{}
	}
	descriptors := make([]models.LessonDescriptor, 0, len(owned))
	for _, d := range s.registry.Listed() {
		if _, ok := owned[d.Type]; ok {
			descriptors = append(descriptors, d)
		}
	}
	return descriptors, nil
}

// CustomerClasses lists a customer's purchased classes.
func (s *PurchaseService) CustomerClasses(ctx context.Context, customerID string) ([]models.Class, error) {
	if err := s.checkCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	classes, err := s.classRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// CustomerSubscriptions lists a customer's subscriptions.
func (s *PurchaseService) CustomerSubscriptions(ctx context.Context, customerID string) ([]models.Subscription, error) {
	if err := s.checkCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	subs, err := s.subRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subscriptions")
	}
	return subs, nil
}

// SubscriptionClasses lists the classes one subscription provisioned.
func (s *PurchaseService) SubscriptionClasses(ctx context.Context, subscriptionID string) ([]models.Class, error) {
	if _, err := s.subRepo.FindByID(ctx, subscriptionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subscription not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subscription")
	}
	classes, err := s.classRepo.ListBySubscription(ctx, subscriptionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subscription classes")
	}
	return classes, nil
}

func (s *PurchaseService) checkCustomer(ctx context.Context, customerID string) error {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "customer not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load customer")
	}
	return nil
}
