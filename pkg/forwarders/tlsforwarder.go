package forwarders

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/kong/kubernetes-testreport/pkg/log"
)

const (
	defaultDialTimeout = time.Second * 30
	defaultDeadline    = time.Minute
)

// ErrEmptyAddress is returned when a TLS forwarder is created without an address.
var ErrEmptyAddress = errors.New("empty report server address")

var defaultTLSConf = tls.Config{
	MinVersion: tls.VersionTLS13,
	MaxVersion: tls.VersionTLS13,
}

type tlsForwarder struct {
	logger logr.Logger
	dialer *tls.Dialer

	address string
}

// TLSOpt defines an option type that manipulates *tls.Config.
type TLSOpt func(*tls.Config)

// NewTLSForwarder creates a forwarder sending every serialized report over a
// fresh TLS connection to the report server at address.
func NewTLSForwarder(address string, logger logr.Logger, tlsOpts ...TLSOpt) (*tlsForwarder, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}

	tlsConf := defaultTLSConf.Clone()
	for _, opt := range tlsOpts {
		opt(tlsConf)
	}

	return &tlsForwarder{
		logger: logger.WithName("tls").WithValues("address", address),
		dialer: &tls.Dialer{
			NetDialer: &net.Dialer{Timeout: defaultDialTimeout},
			Config:    tlsConf,
		},
		address: address,
	}, nil
}

// Name returns the name of the forwarder.
func (tf *tlsForwarder) Name() string {
	return "TLSForwarder"
}

// Forward writes payload to the report server. The connection deadline is the
// context deadline when there is one.
func (tf *tlsForwarder) Forward(ctx context.Context, payload []byte) (err error) {
	conn, err := tf.dialer.DialContext(ctx, "tcp", tf.address)
	if err != nil {
		return errors.Wrapf(err, "failed to connect to report server %s", tf.address)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			err = multierror.Append(err, errors.Wrap(cerr, "failed to close report connection")).ErrorOrNil()
		}
	}()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultDeadline)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return errors.Wrap(err, "failed to set report connection deadline")
	}

	n, err := conn.Write(payload)
	if err != nil {
		return errors.Wrapf(err, "failed to send report, wrote %d of %d bytes", n, len(payload))
	}
	tf.logger.V(log.DebugLevel).Info("report sent", "bytes", n)
	return nil
}
