package ws_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/interfaces/ws"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	fail     bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func TestHub_DifundeTransacciones(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := ws.NewHub(logger.Nop(), 8)
	go hub.Run(ctx)

	ok, broken := &fakeConn{}, &fakeConn{fail: true}
	hub.Register(ok)
	hub.Register(broken)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 10*time.Millisecond)

	hub.TransactionRecorded(ctx, dto.TransactionResponse{ID: "tx-1", Type: "OUT", Quantity: 3})

	require.Eventually(t, func() bool { return ok.received() == 1 }, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond,
		"la conexión que falla se elimina")

	var ev struct {
		Event string                  `json:"event"`
		Data  dto.TransactionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ok.messages[0], &ev))
	assert.Equal(t, ws.EventTransactionRecorded, ev.Event)
	assert.Equal(t, "tx-1", ev.Data.ID)
}

func TestHub_PublishNoBloqueaSinRun(t *testing.T) {
	hub := ws.NewHub(logger.Nop(), 1)
	done := make(chan struct{})
	go func() {
		hub.Publish("a", nil)
		hub.Publish("b", nil) // buffer lleno: se descarta
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish bloqueó")
	}
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Tras cancelar el contexto, las bajas pendientes y las altas nuevas no quedan colgadas.
func TestHub_ApagadoNoBloqueaAltasNiBajas(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewHub(logger.Nop(), 8)
	go hub.Run(ctx)

	conn := &fakeConn{}
	require.True(t, hub.Register(conn))
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("Run no terminó al cancelar el contexto")
	}
	assert.True(t, conn.isClosed(), "Run cierra las conexiones al salir")

	finished := make(chan bool, 1)
	late := &fakeConn{}
	go func() {
		hub.Unregister(conn)
		finished <- hub.Register(late)
	}()
	select {
	case registered := <-finished:
		assert.False(t, registered, "el hub detenido no acepta altas")
		assert.True(t, late.isClosed())
	case <-time.After(time.Second):
		t.Fatal("Unregister/Register bloquearon tras detener el hub")
	}
	assert.Equal(t, 0, hub.Clients())
}
