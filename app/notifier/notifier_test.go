package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/supplydesk/app/models"
	"github.com/shashiranjanraj/supplydesk/pkg/logger"
	"github.com/shashiranjanraj/supplydesk/pkg/mail"
	"github.com/shashiranjanraj/supplydesk/pkg/notification"
	"github.com/shashiranjanraj/supplydesk/pkg/workerpool"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type outbox struct {
	sent []mail.Envelope
	err  error
}

func (o *outbox) Name() string { return "outbox" }

func (o *outbox) Send(_ context.Context, e mail.Envelope) error {
	o.sent = append(o.sent, e)
	return o.err
}

func sample() models.Request {
	return models.Request{
		ID:          1,
		Name:        "Bob",
		Email:       "bob@ceat.com",
		Description: models.ItemQuantity("PEN", 1),
		Status:      models.StatusApproved,
	}
}

func TestSubmissionMessage(t *testing.T) {
	req := sample()
	req.Name = "Alice"
	req.Email = "alice@gmail.com"

	m := Submission(req, "PEN", 2)
	assert.Equal(t, "alice@gmail.com", m.Recipient)
	assert.Equal(t, RoleSystem, m.Role)
	assert.Equal(t, "Request Submission", m.Subject)
	assert.Equal(t, "Request details:\nName: Alice\nItem: PEN\nQuantity: 2", m.Body)
}

func TestStatusChangeMessage(t *testing.T) {
	m := StatusChange(sample())
	assert.Equal(t, "bob@ceat.com", m.Recipient)
	assert.Equal(t, RoleAdmin, m.Role)
	assert.Equal(t, "Request Approved", m.Subject)
	assert.Equal(t, "Your request has been approved.\n\nRequest Details:\nDescription: Item: PEN, Quantity: 1", m.Body)

	req := sample()
	req.Status = models.StatusRejected
	req.Description = models.StructuredDescription("PEN", "STAPLER")
	m = StatusChange(req)
	assert.Equal(t, "Request Rejected", m.Subject)
	assert.Contains(t, m.Body, "has been rejected.")
	assert.Contains(t, m.Body, "Description: PEN, STAPLER")
}

func TestAdminMessage(t *testing.T) {
	m := AdminMessage("bob@ceat.com", "Your order is ready for pickup.")
	assert.Equal(t, "Message from Admin", m.Subject)
	assert.Equal(t, "Your order is ready for pickup.", m.Body)
	assert.Equal(t, "User", m.Context.Name)
	assert.Equal(t, "Admin Message", m.Context.Description.Text())
	assert.Equal(t, uint(0), m.Context.ID)
}

func TestNotifyDeliversMail(t *testing.T) {
	box := &outbox{}
	n := New(notification.NewDispatcher(box, ""))

	err := n.Notify(context.Background(), "bob@ceat.com", RoleAdmin, sample(), "Request Approved", "body")
	require.NoError(t, err)

	require.Len(t, box.sent, 1)
	assert.Equal(t, []string{"bob@ceat.com"}, box.sent[0].To)
	assert.Equal(t, "Request Approved", box.sent[0].Subject)
	assert.Equal(t, "SupplyDesk Admin", box.sent[0].FromName)
	assert.Equal(t, "body", box.sent[0].Body)
}

func TestRoleOnlyChangesSender(t *testing.T) {
	box := &outbox{}
	n := New(notification.NewDispatcher(box, ""))
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, "a@gmail.com", RoleSystem, sample(), "s", "b"))
	require.NoError(t, n.Notify(ctx, "a@gmail.com", RoleAdmin, sample(), "s", "b"))

	require.Len(t, box.sent, 2)
	system, admin := box.sent[0], box.sent[1]
	assert.NotEqual(t, system.FromName, admin.FromName)
	system.FromName, admin.FromName = "", ""
	assert.Equal(t, system, admin)
}

func TestNotifyFailureIsDeliveryError(t *testing.T) {
	n := New(notification.NewDispatcher(&outbox{err: errors.New("relay denied")}, ""))

	err := n.Send(context.Background(), StatusChange(sample()))
	require.Error(t, err)
	assert.ErrorIs(t, err, notification.ErrDelivery)
	assert.Contains(t, err.Error(), "bob@ceat.com")
}

func TestAnnounceSubmission(t *testing.T) {
	var payload struct {
		Text        string `json:"text"`
		Attachments []struct {
			Title string `json:"title"`
		} `json:"attachments"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &payload)
	}))
	defer srv.Close()

	n := New(notification.NewDispatcher(&outbox{}, srv.URL))
	n.AnnounceSubmission(context.Background(), sample())

	assert.Equal(t, "New supply request #1 from Bob", payload.Text)
	require.Len(t, payload.Attachments, 1)
	assert.Equal(t, "bob@ceat.com", payload.Attachments[0].Title)
}

func TestAnnounceSubmissionWithoutSlackIsNoop(t *testing.T) {
	box := &outbox{}
	n := New(notification.NewDispatcher(box, ""))
	n.AnnounceSubmission(context.Background(), sample())
	assert.Empty(t, box.sent)
}

func TestAnnounceSubmissionInBackground(t *testing.T) {
	var (
		mu   sync.Mutex
		hits int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
	}))
	defer srv.Close()

	pool := workerpool.New("announce", 1, 5*time.Second)
	n := New(notification.NewDispatcher(&outbox{}, srv.URL)).InBackground(pool)

	ctx, cancel := context.WithCancel(context.Background())
	n.AnnounceSubmission(ctx, sample())
	cancel() // the request is over; the announcement still goes out

	require.NoError(t, pool.Shutdown(context.Background()))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, hits)
}

func TestAnnounceSubmissionFallsBackInline(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits.Add(1) }))
	defer srv.Close()

	pool := workerpool.New("announce", 1, time.Second)
	require.NoError(t, pool.Shutdown(context.Background()))

	New(notification.NewDispatcher(&outbox{}, srv.URL)).InBackground(pool).AnnounceSubmission(context.Background(), sample())
	assert.Equal(t, int32(1), hits.Load())
}
