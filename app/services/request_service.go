package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/supplydesk/app/catalog"
	"github.com/shashiranjanraj/supplydesk/app/models"
	"github.com/shashiranjanraj/supplydesk/app/notifier"
	"github.com/shashiranjanraj/supplydesk/pkg/auth"
	"github.com/shashiranjanraj/supplydesk/pkg/collection"
)

// RequestStore is implemented by *repositories.RequestRepository.
type RequestStore interface {
	Create(ctx context.Context, name, email string, desc models.Description) (models.Request, error)
	All(ctx context.Context) ([]models.Request, error)
	Find(ctx context.Context, id uint) (models.Request, error)
	UpdateStatus(ctx context.Context, id uint, status models.Status) (models.Request, error)
	Delete(ctx context.Context, id uint) error
}

// Notices is implemented by *notifier.Notifier.
type Notices interface {
	Send(ctx context.Context, m notifier.Message) error
	AnnounceSubmission(ctx context.Context, req models.Request)
}

// SubmitInput is what the request form posts. The requester email comes
// from the caller identity, never from the form.
type SubmitInput struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Item       string `json:"item"`
	Quantity   int    `json:"quantity"`
}

// Receipt is the outcome of a store write plus its notice. The write is
// committed even when NoticeError is set.
type Receipt struct {
	Request     models.Request `json:"request"`
	Notified    bool           `json:"notified"`
	NoticeError string         `json:"notice_error,omitempty"`

	// Delivery is the *notification.DeliveryError, if any.
	Delivery error `json:"-"`
}

func receipt(req models.Request, noticeErr error) Receipt {
	r := Receipt{Request: req, Notified: noticeErr == nil, Delivery: noticeErr}
	if noticeErr != nil {
		r.NoticeError = noticeErr.Error()
	}
	return r
}

// RequestService runs the request lifecycle on behalf of an explicit caller.
type RequestService struct {
	store    RequestStore
	notifier Notices
}

func NewRequestService(store RequestStore, n Notices) *RequestService {
	return &RequestService{store: store, notifier: n}
}

// Submit stores a Pending request for caller and sends the submission notice.
func (s *RequestService) Submit(ctx context.Context, caller auth.Identity, in SubmitInput) (Receipt, error) {
	if !caller.Role.Valid() {
		return Receipt{}, fmt.Errorf("%w: sign in to submit a request", models.ErrForbidden)
	}

	department := strings.TrimSpace(in.Department)
	if department == "" {
		department = caller.Department
	}
	if department != "" && !catalog.HasDepartment(department) {
		return Receipt{}, &models.InvalidFieldError{Field: "department", Value: fmt.Sprintf("%q", department), Reason: "unknown department"}
	}

	if err := models.ValidateName(in.Name); err != nil {
		return Receipt{}, err
	}
	item, ok := catalog.CanonicalItem(in.Item)
	if !ok {
		return Receipt{}, &models.InvalidFieldError{Field: "item", Value: fmt.Sprintf("%q", in.Item), Reason: "not in the catalog"}
	}
	if in.Quantity < 1 {
		return Receipt{}, &models.InvalidFieldError{Field: "quantity", Value: in.Quantity, Reason: "must be at least 1"}
	}

	name := strings.TrimSpace(in.Name)
	req, err := s.store.Create(ctx, name, caller.Email, models.ItemQuantity(item, in.Quantity))
	if err != nil {
		return Receipt{}, err
	}

	noticeErr := s.notifier.Send(ctx, notifier.Submission(req, item, in.Quantity))
	s.notifier.AnnounceSubmission(ctx, req)
	return receipt(req, noticeErr), nil
}

// List returns every request in ascending id order.
func (s *RequestService) List(ctx context.Context, caller auth.Identity) ([]models.Request, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.store.All(ctx)
}

// Get returns request id.
func (s *RequestService) Get(ctx context.Context, caller auth.Identity, id uint) (models.Request, error) {
	if err := requireAdmin(caller); err != nil {
		return models.Request{}, err
	}
	return s.store.Find(ctx, id)
}

// ChangeStatus sets the status of request id and tells the requester.
func (s *RequestService) ChangeStatus(ctx context.Context, caller auth.Identity, id uint, status string) (Receipt, error) {
	if err := requireAdmin(caller); err != nil {
		return Receipt{}, err
	}
	st, err := models.ParseStatus(status)
	if err != nil {
		return Receipt{}, err
	}

	req, err := s.store.UpdateStatus(ctx, id, st)
	if err != nil {
		return Receipt{}, err
	}

	noticeErr := s.notifier.Send(ctx, notifier.StatusChange(req))
	return receipt(req, noticeErr), nil
}

// Remove deletes request id; the remaining ids are renumbered by the store.
func (s *RequestService) Remove(ctx context.Context, caller auth.Identity, id uint) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Recipients lists the distinct requester emails, first-seen order.
func (s *RequestService) Recipients(ctx context.Context, caller auth.Identity) ([]string, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	reqs, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}

	emails := collection.Pluck(reqs, func(r models.Request) string { return r.Email })
	emails = collection.Unique(collection.Filter(emails, func(e string) bool { return e != "" }))
	if emails == nil {
		emails = []string{}
	}
	return emails, nil
}

// Broadcast mails a free-text admin message to one known requester.
func (s *RequestService) Broadcast(ctx context.Context, caller auth.Identity, email, message string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if strings.TrimSpace(message) == "" {
		return &models.InvalidFieldError{Field: "message", Value: `""`, Reason: "must not be empty"}
	}

	recipients, err := s.Recipients(ctx, caller)
	if err != nil {
		return err
	}
	if !collection.Contains(recipients, func(r string) bool { return r == email }) {
		return &models.InvalidFieldError{Field: "email", Value: fmt.Sprintf("%q", email), Reason: "no request was submitted from this address"}
	}

	return s.notifier.Send(ctx, notifier.AdminMessage(email, message))
}

func requireAdmin(caller auth.Identity) error {
	if !caller.IsAdmin() {
		return fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	return nil
}
