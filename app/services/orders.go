package services

import (
	"context"
	"slices"
	"strings"

	"github.com/shashiranjanraj/vastra/app/jobs"
	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/pkg/event"
	"github.com/shashiranjanraj/vastra/pkg/logger"
	"github.com/shashiranjanraj/vastra/pkg/orm"
	"github.com/shashiranjanraj/vastra/pkg/queue"
	"github.com/shashiranjanraj/vastra/pkg/session"
)

// Dispatcher queues background jobs. *queue.Manager satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, job queue.Job) error
}

// OrderService serves the customer's order history and the admin
// fulfillment screens.
type OrderService struct {
	repos *repositories.Repos
	jobs  Dispatcher
}

func NewOrderService(repos *repositories.Repos, jobs Dispatcher) *OrderService {
	return &OrderService{repos: repos, jobs: jobs}
}

// ListMine returns the caller's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, sess *session.Session) ([]models.Order, error) {
	if !sess.SignedIn() {
		return nil, ErrSignInRequired
	}
	return s.repos.Orders.ForUser(ctx, sess.UserID)
}

// Find returns one of the caller's orders by its order number.
func (s *OrderService) Find(ctx context.Context, sess *session.Session, number string) (models.Order, error) {
	if !sess.SignedIn() {
		return models.Order{}, ErrSignInRequired
	}
	return s.repos.Orders.FindForUser(ctx, sess.UserID, strings.ToUpper(strings.TrimSpace(number)))
}

// List pages through every order for the admin screens.
func (s *OrderService) List(ctx context.Context, f repositories.OrderFilter, p orm.Pagination) ([]models.Order, orm.Pagination, error) {
	return s.repos.Orders.List(ctx, f, p)
}

func (s *OrderService) Get(ctx context.Context, id uint) (models.Order, error) {
	return s.repos.Orders.Find(ctx, id)
}

type StatusInput struct {
	Status         string `json:"status"          validate:"required,in=processing|shipped|delivered|cancelled"`
	TrackingNumber string `json:"tracking_number" validate:"max=128"`
}

// UpdateStatus moves an order through fulfillment and queues the customer
// email. Shipping requires a tracking number.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, in StatusInput) (models.Order, error) {
	in.TrackingNumber = strings.TrimSpace(in.TrackingNumber)
	if err := check(in); err != nil {
		return models.Order{}, err
	}
	if in.Status == models.OrderShipped && in.TrackingNumber == "" {
		return models.Order{}, invalid("tracking_number", "A tracking number is required to mark an order shipped.")
	}

	current, err := s.repos.Orders.Find(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if err := s.repos.Orders.SetStatus(ctx, id, in.Status, in.TrackingNumber); err != nil {
		return models.Order{}, err
	}

	if current.Status != in.Status && s.jobs != nil {
		var job queue.Job = &jobs.SendStatusUpdate{OrderID: id, Status: in.Status}
		if in.Status == models.OrderShipped {
			job = &jobs.SendShippingNotice{OrderID: id}
		}
		if err := s.jobs.Dispatch(ctx, job); err != nil {
			logger.WithCtx(ctx).Error("orders: queue status email", "order_id", id, "error", err)
		}
	}
	return s.repos.Orders.Find(ctx, id)
}

// ReviewService lists and records product reviews. Ratings feed the
// catalog's rating sort and the recommended score.
type ReviewService struct {
	repos *repositories.Repos
	bus   *event.Bus
}

func NewReviewService(repos *repositories.Repos, bus *event.Bus) *ReviewService {
	return &ReviewService{repos: repos, bus: bus}
}

func (s *ReviewService) List(ctx context.Context, productID uint) ([]models.Review, error) {
	if _, err := s.repos.Products.FindActive(ctx, productID); err != nil {
		return nil, err
	}
	return s.repos.Reviews.ForProduct(ctx, productID)
}

type ReviewInput struct {
	Rating  int    `json:"rating"  validate:"required,between=1:5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// Submit creates the caller's review of productID or replaces the one they
// wrote before.
func (s *ReviewService) Submit(ctx context.Context, sess *session.Session, productID uint, in ReviewInput) (models.Review, error) {
	if !sess.SignedIn() {
		return models.Review{}, ErrSignInRequired
	}
	if err := check(in); err != nil {
		return models.Review{}, err
	}
	if _, err := s.repos.Products.FindActive(ctx, productID); err != nil {
		return models.Review{}, err
	}
	user, err := s.repos.Users.FindByID(ctx, sess.UserID)
	if err != nil {
		return models.Review{}, err
	}

	rv := models.Review{
		UserID:    sess.UserID,
		ProductID: productID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		Author:    user.FullName(),
	}
	if err := s.repos.Reviews.Upsert(ctx, &rv); err != nil {
		return models.Review{}, err
	}
	if s.bus != nil {
		s.bus.FireAsync(ctx, EventProductsChanged, nil)
	}

	// The upsert leaves rv.ID unset when it updated an existing row.
	reviews, err := s.repos.Reviews.ForProduct(ctx, productID)
	if err != nil {
		return rv, nil
	}
	if i := slices.IndexFunc(reviews, func(r models.Review) bool { return r.UserID == sess.UserID }); i >= 0 {
		return reviews[i], nil
	}
	return rv, nil
}
