package serial

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
	"go.uber.org/zap"
)

// fakePort scripts Read responses; a zero-length chunk simulates a read
// timeout.
type fakePort struct {
	serial.Port

	chunks  [][]byte
	written []byte
	drained bool
	resets  int
}

func (p *fakePort) Read(buf []byte) (int, error) {
	if len(p.chunks) == 0 {
		return 0, nil
	}
	chunk := p.chunks[0]
	if len(chunk) == 0 {
		p.chunks = p.chunks[1:]
		return 0, nil
	}
	n := copy(buf, chunk)
	if n < len(chunk) {
		p.chunks[0] = chunk[n:]
	} else {
		p.chunks = p.chunks[1:]
	}
	return n, nil
}

func (p *fakePort) Write(data []byte) (int, error) {
	p.written = append(p.written, data...)
	return len(data), nil
}

func (p *fakePort) Drain() error {
	p.drained = true
	return nil
}

func (p *fakePort) ResetInputBuffer() error {
	p.resets++
	return nil
}

func (p *fakePort) ResetOutputBuffer() error {
	p.resets++
	return nil
}

func (p *fakePort) Close() error { return nil }

func openFakeConnection(t *testing.T, port *fakePort) *Connection {
	t.Helper()
	conn, err := NewConnection(&Config{Port: "COM7"}, zap.NewNop())
	require.NoError(t, err)
	conn.port = port
	conn.isOpen = true
	return conn
}

func TestNewConnectionDefaults(t *testing.T) {
	conn, err := NewConnection(&Config{Port: "COM7"}, zap.NewNop())
	require.NoError(t, err)

	cfg := conn.GetConfig()
	require.Equal(t, 9600, cfg.BaudRate)
	require.Equal(t, 8, cfg.DataBits)
	require.Equal(t, 1, cfg.StopBits)
	require.Equal(t, 2*time.Second, cfg.Timeout)
	require.False(t, conn.IsOpen())
}

func TestNewConnectionRequiresPort(t *testing.T) {
	_, err := NewConnection(&Config{}, zap.NewNop())
	require.Error(t, err)
}

func TestWriteDrains(t *testing.T) {
	port := &fakePort{}
	conn := openFakeConnection(t, port)

	n, err := conn.Write(context.Background(), []byte("AT\n"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte("AT\n"), port.written)
	require.True(t, port.drained)
}

func TestDiscardBuffers(t *testing.T) {
	port := &fakePort{}
	conn := openFakeConnection(t, port)

	require.NoError(t, conn.DiscardBuffers())
	require.Equal(t, 2, port.resets)
}

func TestReadNStopsAtTimeout(t *testing.T) {
	// Two chunks arrive, then the port times out before maxBytes is hit.
	port := &fakePort{chunks: [][]byte{[]byte("OK"), []byte("!"), {}}}
	conn := openFakeConnection(t, port)

	data, err := conn.ReadN(context.Background(), 64)
	require.NoError(t, err)
	require.Equal(t, []byte("OK!"), data)
}

func TestReadNHonorsMaxBytes(t *testing.T) {
	port := &fakePort{chunks: [][]byte{[]byte("0123456789")}}
	conn := openFakeConnection(t, port)

	data, err := conn.ReadN(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, []byte("0123"), data)
}

func TestReadUntilDelimiter(t *testing.T) {
	port := &fakePort{chunks: [][]byte{[]byte("VERSION 1.2\r\nEXTRA")}}
	conn := openFakeConnection(t, port)

	data, err := conn.ReadUntil(context.Background(), []byte("\r\n"))
	require.NoError(t, err)
	// The delimiter stays in the result; later bytes stay on the port.
	require.Equal(t, []byte("VERSION 1.2\r\n"), data)
}

func TestReadUntilTimeoutReturnsPartial(t *testing.T) {
	port := &fakePort{chunks: [][]byte{[]byte("PART"), {}}}
	conn := openFakeConnection(t, port)

	data, err := conn.ReadUntil(context.Background(), []byte("\r\n"))
	require.NoError(t, err)
	require.Equal(t, []byte("PART"), data)
}

func TestReadUntilDefaultsToNewline(t *testing.T) {
	port := &fakePort{chunks: [][]byte{[]byte("pong\nrest")}}
	conn := openFakeConnection(t, port)

	data, err := conn.ReadUntil(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, []byte("pong\n"), data)
}

func TestOperationsRequireOpenPort(t *testing.T) {
	conn, err := NewConnection(&Config{Port: "COM7"}, zap.NewNop())
	require.NoError(t, err)

	_, err = conn.Write(context.Background(), []byte("x"))
	require.Error(t, err)
	_, err = conn.ReadN(context.Background(), 1)
	require.Error(t, err)
	_, err = conn.ReadUntil(context.Background(), nil)
	require.Error(t, err)
	require.Error(t, conn.DiscardBuffers())
}
