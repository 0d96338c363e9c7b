package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/supplydesk/app/models"
	"github.com/shashiranjanraj/supplydesk/app/notifier"
	"github.com/shashiranjanraj/supplydesk/app/repositories"
	"github.com/shashiranjanraj/supplydesk/pkg/auth"
	"github.com/shashiranjanraj/supplydesk/pkg/database"
	"github.com/shashiranjanraj/supplydesk/pkg/logger"
	"github.com/shashiranjanraj/supplydesk/pkg/notification"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type mockNotices struct{ mock.Mock }

func (m *mockNotices) Send(ctx context.Context, msg notifier.Message) error {
	return m.Called(msg).Error(0)
}

func (m *mockNotices) AnnounceSubmission(ctx context.Context, req models.Request) {
	m.Called(req)
}

var (
	alice = auth.Identity{Subject: "E-1", Email: "alice@gmail.com", Department: "IT", Role: auth.RoleUser}
	bob   = auth.Identity{Subject: "E-2", Email: "bob@ceat.com", Department: "HR", Role: auth.RoleUser}
	admin = auth.Identity{Subject: "admin", Email: "admin@ceat.com", Role: auth.RoleAdmin}
)

func newService(t *testing.T) (*RequestService, *mockNotices) {
	t.Helper()

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "requests.db"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Request{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	n := &mockNotices{}
	return NewRequestService(repositories.NewRequestRepository(db, nil), n), n
}

func subject(s string) interface{} {
	return mock.MatchedBy(func(m notifier.Message) bool { return m.Subject == s })
}

func TestScenarioSubmitDeleteApprove(t *testing.T) {
	svc, n := newService(t)
	ctx := context.Background()

	n.On("Send", subject("Request Submission")).Return(nil).Twice()
	n.On("AnnounceSubmission", mock.Anything).Return().Twice()

	r1, err := svc.Submit(ctx, alice, SubmitInput{Name: "Alice", Item: "PEN", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, uint(1), r1.Request.ID)
	assert.Equal(t, models.StatusPending, r1.Request.Status)
	assert.Equal(t, "Item: PEN, Quantity: 2", r1.Request.Description.Text())
	assert.True(t, r1.Notified)

	r2, err := svc.Submit(ctx, bob, SubmitInput{Name: "Bob", Item: "pen", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, uint(2), r2.Request.ID)

	require.NoError(t, svc.Remove(ctx, admin, 1))

	all, err := svc.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, uint(1), all[0].ID)
	assert.Equal(t, "Bob", all[0].Name)

	var sent notifier.Message
	n.On("Send", subject("Request Approved")).Run(func(args mock.Arguments) {
		sent = args.Get(0).(notifier.Message)
	}).Return(nil).Once()

	rc, err := svc.ChangeStatus(ctx, admin, 1, "Approved")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, rc.Request.Status)
	assert.Equal(t, "bob@ceat.com", sent.Recipient)
	assert.Equal(t, "Your request has been approved.\n\nRequest Details:\nDescription: Item: PEN, Quantity: 1", sent.Body)

	n.AssertExpectations(t)
}

func TestSubmissionNoticeRestatesTheForm(t *testing.T) {
	svc, n := newService(t)

	var sent notifier.Message
	n.On("Send", mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(0).(notifier.Message)
	}).Return(nil)
	n.On("AnnounceSubmission", mock.Anything).Return()

	_, err := svc.Submit(context.Background(), alice, SubmitInput{Name: "Alice", Item: "STAPLER", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, "alice@gmail.com", sent.Recipient)
	assert.Equal(t, notifier.RoleSystem, sent.Role)
	assert.Equal(t, "Request details:\nName: Alice\nItem: STAPLER\nQuantity: 3", sent.Body)
}

func TestDeliveryFailureKeepsTheWrite(t *testing.T) {
	svc, n := newService(t)
	ctx := context.Background()

	failure := &notification.DeliveryError{Channel: "mail", Recipient: "alice@gmail.com", Err: errors.New("smtp down")}
	n.On("Send", mock.Anything).Return(failure)
	n.On("AnnounceSubmission", mock.Anything).Return()

	rc, err := svc.Submit(ctx, alice, SubmitInput{Name: "Alice", Item: "PEN", Quantity: 1})
	require.NoError(t, err)
	assert.False(t, rc.Notified)
	assert.ErrorIs(t, rc.Delivery, notification.ErrDelivery)
	assert.Contains(t, rc.NoticeError, "smtp down")

	all, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	rc, err = svc.ChangeStatus(ctx, admin, 1, "rejected")
	require.NoError(t, err)
	assert.False(t, rc.Notified)

	stored, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, stored[0].Status)
}

func TestSubmitValidation(t *testing.T) {
	svc, n := newService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		caller auth.Identity
		in     SubmitInput
		want   error
	}{
		{"anonymous", auth.Identity{}, SubmitInput{Name: "A", Item: "PEN", Quantity: 1}, models.ErrForbidden},
		{"foreign domain", auth.Identity{Email: "x@yahoo.com", Role: auth.RoleUser}, SubmitInput{Name: "X", Item: "PEN", Quantity: 1}, models.ErrInvalidEmail},
		{"empty name", alice, SubmitInput{Name: "", Item: "PEN", Quantity: 1}, models.ErrInvalidName},
		{"unknown item", alice, SubmitInput{Name: "A", Item: "LAPTOP", Quantity: 1}, models.ErrInvalidInput},
		{"zero quantity", alice, SubmitInput{Name: "A", Item: "PEN", Quantity: 0}, models.ErrInvalidInput},
		{"unknown department", alice, SubmitInput{Name: "A", Department: "Legal", Item: "PEN", Quantity: 1}, models.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tc.caller, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	all, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, all)
	n.AssertNotCalled(t, "Send", mock.Anything)
}

func TestAdminOperationsRequireAdmin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, alice)
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = svc.ChangeStatus(ctx, alice, 1, "Approved")
	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.ErrorIs(t, svc.Remove(ctx, alice, 1), models.ErrForbidden)
	_, err = svc.Recipients(ctx, alice)
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = svc.Get(ctx, alice, 1)
	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.ErrorIs(t, svc.Broadcast(ctx, alice, "a@gmail.com", "hi"), models.ErrForbidden)
}

func TestGet(t *testing.T) {
	svc, n := newService(t)
	ctx := context.Background()
	n.On("Send", mock.Anything).Return(nil)
	n.On("AnnounceSubmission", mock.Anything)

	_, err := svc.Submit(ctx, alice, SubmitInput{Name: "Alice", Item: "eraser", Quantity: 3})
	require.NoError(t, err)

	got, err := svc.Get(ctx, admin, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice@gmail.com", got.Email)
	assert.Equal(t, "Item: ERASER, Quantity: 3", got.Description.Text())

	_, err = svc.Get(ctx, admin, 2)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestChangeStatusErrors(t *testing.T) {
	svc, n := newService(t)
	ctx := context.Background()

	_, err := svc.ChangeStatus(ctx, admin, 1, "Done")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	_, err = svc.ChangeStatus(ctx, admin, 7, "Approved")
	assert.ErrorIs(t, err, models.ErrNotFound)
	n.AssertNotCalled(t, "Send", mock.Anything)
}

func TestRecipientsAndBroadcast(t *testing.T) {
	svc, n := newService(t)
	ctx := context.Background()

	n.On("Send", subject("Request Submission")).Return(nil)
	n.On("AnnounceSubmission", mock.Anything).Return()

	for _, caller := range []auth.Identity{alice, bob, alice} {
		_, err := svc.Submit(ctx, caller, SubmitInput{Name: "N", Item: "PEN", Quantity: 1})
		require.NoError(t, err)
	}

	emails, err := svc.Recipients(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@gmail.com", "bob@ceat.com"}, emails)

	var sent notifier.Message
	n.On("Send", subject("Message from Admin")).Run(func(args mock.Arguments) {
		sent = args.Get(0).(notifier.Message)
	}).Return(nil).Once()

	require.NoError(t, svc.Broadcast(ctx, admin, "bob@ceat.com", "Pickup at desk 4"))
	assert.Equal(t, "bob@ceat.com", sent.Recipient)
	assert.Equal(t, "Pickup at desk 4", sent.Body)
	assert.Equal(t, "User", sent.Context.Name)

	assert.ErrorIs(t, svc.Broadcast(ctx, admin, "carol@gmail.com", "hi"), models.ErrInvalidInput)
	assert.ErrorIs(t, svc.Broadcast(ctx, admin, "bob@ceat.com", "  "), models.ErrInvalidInput)
}

func TestRecipientsEmptyStore(t *testing.T) {
	svc, _ := newService(t)

	emails, err := svc.Recipients(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, []string{}, emails)
}

type fixedCreds struct{ ok bool }

func (f fixedCreds) Verify(string, string) bool { return f.ok }

func TestUserLogin(t *testing.T) {
	svc := NewAuthService(fixedCreds{})
	ctx := context.Background()

	sess, err := svc.UserLogin(ctx, UserLoginInput{EmployeeID: "E-1", Email: "alice@gmail.com", Department: "IT"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, sess.Identity.Role)

	claims, err := auth.ValidateToken(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Identity, claims.Identity())

	_, err = svc.UserLogin(ctx, UserLoginInput{EmployeeID: "E-1", Email: "alice@yahoo.com", Department: "IT"})
	assert.ErrorIs(t, err, models.ErrInvalidEmail)
	_, err = svc.UserLogin(ctx, UserLoginInput{EmployeeID: " ", Email: "alice@gmail.com", Department: "IT"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = svc.UserLogin(ctx, UserLoginInput{EmployeeID: "E-1", Email: "alice@gmail.com", Department: ""})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestAdminLogin(t *testing.T) {
	ctx := context.Background()

	sess, err := NewAuthService(fixedCreds{ok: true}).AdminLogin(ctx, AdminLoginInput{Username: "admin", Password: "x", Email: "boss@ceat.com"})
	require.NoError(t, err)
	assert.True(t, sess.Identity.IsAdmin())
	assert.Equal(t, "boss@ceat.com", sess.Identity.Email)

	_, err = NewAuthService(fixedCreds{ok: false}).AdminLogin(ctx, AdminLoginInput{Username: "admin", Password: "x", Email: "boss@ceat.com"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// the email rule is checked before the password
	_, err = NewAuthService(fixedCreds{ok: true}).AdminLogin(ctx, AdminLoginInput{Username: "admin", Password: "x", Email: "boss@corp.com"})
	assert.ErrorIs(t, err, models.ErrInvalidEmail)
}
