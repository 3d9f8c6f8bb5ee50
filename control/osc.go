package control

import (
	"context"
	"fmt"
	"math"
	"net"
	"strconv"

	goerrors "github.com/gruntwork-io/go-commons/errors"
	"github.com/hypebeast/go-osc/osc"
	"github.com/robmorgan/pulse/logger"
	"github.com/sirupsen/logrus"
)

// OSC addresses understood by OSCServer.
const (
	AddressStart     = "/pulse/start"
	AddressStop      = "/pulse/stop"
	AddressToggle    = "/pulse/toggle"
	AddressTempo     = "/pulse/tempo"
	AddressSignature = "/pulse/signature"
	AddressMode      = "/pulse/mode"
	AddressTap       = "/pulse/tap"
)

// OSCServer exposes a Surface over OSC so the metronome can be driven from a
// controller or another application.
type OSCServer struct {
	addr       string
	surface    *Surface
	dispatcher *osc.StandardDispatcher
}

func NewOSCServer(addr string, s *Surface) (*OSCServer, error) {
	o := &OSCServer{
		addr:       addr,
		surface:    s,
		dispatcher: osc.NewStandardDispatcher(),
	}

	handlers := map[string]osc.HandlerFunc{
		AddressStart:     func(*osc.Message) { s.Start() },
		AddressStop:      func(*osc.Message) { s.Stop() },
		AddressToggle:    func(*osc.Message) { s.Toggle() },
		AddressTempo:     o.handleTempo,
		AddressSignature: o.handleSignature,
		AddressMode:      o.handleMode,
		AddressTap:       func(*osc.Message) { s.Tap() },
	}
	for addr, fn := range handlers {
		if err := o.dispatcher.AddMsgHandler(addr, fn); err != nil {
			return nil, goerrors.WithStackTrace(err)
		}
	}
	return o, nil
}

// ListenAndServe serves OSC over UDP until ctx is done.
func (o *OSCServer) ListenAndServe(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", o.addr)
	if err != nil {
		return goerrors.WithStackTraceAndPrefix(err, "error listening for OSC on %s", o.addr)
	}

	logger := logger.GetProjectLogger()
	logger.WithFields(logrus.Fields{"addr": conn.LocalAddr().String()}).Info("Listening for OSC...")

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	server := &osc.Server{Addr: o.addr, Dispatcher: o.dispatcher}
	err = server.Serve(conn)
	if ctx.Err() != nil {
		logger.Info("OSC server shutdown")
		return nil
	}
	return err
}

// Dispatch handles a single packet as if it had arrived over the network.
func (o *OSCServer) Dispatch(packet osc.Packet) {
	o.dispatcher.Dispatch(packet)
}

func (o *OSCServer) handleTempo(msg *osc.Message) {
	bpm, err := intArgument(msg)
	if err != nil {
		o.badMessage(msg, err)
		return
	}
	o.surface.SetTempo(bpm)
}

func (o *OSCServer) handleSignature(msg *osc.Message) {
	beats, err := intArgument(msg)
	if err != nil {
		o.badMessage(msg, err)
		return
	}
	o.surface.SetSignature(beats)
}

func (o *OSCServer) handleMode(msg *osc.Message) {
	if len(msg.Arguments) != 1 {
		o.badMessage(msg, fmt.Errorf("expected 1 argument, got %d", len(msg.Arguments)))
		return
	}
	name, ok := msg.Arguments[0].(string)
	if !ok {
		o.badMessage(msg, fmt.Errorf("expected a string argument, got %T", msg.Arguments[0]))
		return
	}
	o.surface.SetModeByName(name)
}

func (o *OSCServer) badMessage(msg *osc.Message, err error) {
	logger := logger.GetProjectLogger()
	logger.WithFields(logrus.Fields{"address": msg.Address}).Warnf("ignoring OSC message: %v", err)
	o.surface.reportError(goerrors.WithStackTrace(err))
}

// intArgument reads the single numeric argument of msg. Controllers often send
// floats for faders, so those are rounded.
func intArgument(msg *osc.Message) (int, error) {
	if len(msg.Arguments) != 1 {
		return 0, fmt.Errorf("expected 1 argument, got %d", len(msg.Arguments))
	}
	switch v := msg.Arguments[0].(type) {
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float32:
		return roundArgument(float64(v))
	case float64:
		return roundArgument(v)
	case string:
		return strconv.Atoi(v)
	}
	return 0, fmt.Errorf("unsupported argument type %T", msg.Arguments[0])
}

func roundArgument(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("argument %v out of range", v)
	}
	return int(math.Round(v)), nil
}
