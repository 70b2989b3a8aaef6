package instr

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/scpi-protocol/scpi-go/pkg/codec"
	"github.com/scpi-protocol/scpi-go/pkg/dispatch"
	"github.com/scpi-protocol/scpi-go/pkg/model"
	"github.com/scpi-protocol/scpi-go/pkg/schema"
	"github.com/scpi-protocol/scpi-go/pkg/version"
)

//go:embed decl/k24xx.yaml
var declFS embed.FS

// ErrErrorQueueStuck indicates DrainErrors gave up because the
// instrument kept reporting errors past the drain limit.
var ErrErrorQueueStuck = errors.New("error queue did not drain")

// maxQueueDrain bounds DrainErrors against an instrument that refills
// its queue faster than it is read.
const maxQueueDrain = 64

// Common commands defined by IEEE 488.2.
const (
	cmdIdentify          = "*IDN?"
	cmdReset             = "*RST"
	cmdClearStatus       = "*CLS"
	cmdOperationComplete = "*OPC?"
	cmdVersion           = "SYST:VERS?"
	cmdNextError         = "SYST:ERR:NEXT?"
)

// K24xx compiles the bundled Keithley 24xx source-meter declaration.
func K24xx() (*model.Registry, error) {
	data, err := declFS.ReadFile("decl/k24xx.yaml")
	if err != nil {
		return nil, fmt.Errorf("bundled declaration: %w", err)
	}
	return schema.CompileBytes(data)
}

// Instrument couples a session with the common-command surface every
// SCPI instrument exposes. Tree-declared attributes and commands go
// through Session directly; Instrument adds the operations that exist
// outside any declaration.
type Instrument struct {
	session *dispatch.Session
}

// New wraps a session.
func New(session *dispatch.Session) *Instrument {
	return &Instrument{session: session}
}

// Session returns the underlying dispatch session.
func (i *Instrument) Session() *dispatch.Session {
	return i.session
}

// Identify queries *IDN? and returns the raw identification string
// (conventionally "manufacturer,model,serial,firmware").
func (i *Instrument) Identify(ctx context.Context) (string, error) {
	return i.session.Exchange(ctx, cmdIdentify, true)
}

// Reset sends *RST, returning the instrument to its power-on defaults.
func (i *Instrument) Reset(ctx context.Context) error {
	_, err := i.session.Exchange(ctx, cmdReset, false)
	return err
}

// ClearStatus sends *CLS, flushing the event registers and the error
// queue.
func (i *Instrument) ClearStatus(ctx context.Context) error {
	_, err := i.session.Exchange(ctx, cmdClearStatus, false)
	return err
}

// OperationComplete queries *OPC? and blocks until the instrument
// reports all pending overlapped operations finished.
func (i *Instrument) OperationComplete(ctx context.Context) (bool, error) {
	raw, err := i.session.Exchange(ctx, cmdOperationComplete, true)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(raw) == "1", nil
}

// Version queries the SCPI standard version the instrument implements.
func (i *Instrument) Version(ctx context.Context) (version.Version, error) {
	raw, err := i.session.Exchange(ctx, cmdVersion, true)
	if err != nil {
		return version.Version{}, err
	}
	return version.Parse(raw)
}

// NextError pops the oldest entry from the instrument's error queue.
// Code 0 means the queue is empty.
func (i *Instrument) NextError(ctx context.Context) (codec.InstrumentError, error) {
	raw, err := i.session.Exchange(ctx, cmdNextError, true)
	if err != nil {
		return codec.InstrumentError{}, err
	}
	parsed, err := codec.ParseErrorQueue(raw)
	if err != nil {
		return codec.InstrumentError{}, err
	}
	return parsed.(codec.InstrumentError), nil
}

// DrainErrors pops the error queue until the "no error" sentinel and
// returns the collected entries, oldest first.
func (i *Instrument) DrainErrors(ctx context.Context) ([]codec.InstrumentError, error) {
	var drained []codec.InstrumentError
	for n := 0; n < maxQueueDrain; n++ {
		entry, err := i.NextError(ctx)
		if err != nil {
			return drained, err
		}
		if entry.IsOK() {
			return drained, nil
		}
		drained = append(drained, entry)
	}
	return drained, fmt.Errorf("%w after %d entries", ErrErrorQueueStuck, maxQueueDrain)
}
