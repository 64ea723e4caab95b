package queue

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kumbhsaathi/kumbhsaathi/internal/notify"
)

// closedAddr returns a local address nothing listens on.
func closedAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestPublisher_UnreachableBrokerIsNotificationError(t *testing.T) {
	p := NewPublisher("amqp://guest:guest@"+closedAddr(t)+"/", zap.NewNop())

	err := p.NotifyBooking(context.Background(), notify.BookingNotice{TicketID: "KM-27-RK-AB12"})
	var ne *notify.Error
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "rabbitmq", ne.Channel)

	err = p.NotifyAlert(context.Background(), notify.AlertNotice{Ghat: "Ram Kund"})
	assert.ErrorAs(t, err, &ne)
}
