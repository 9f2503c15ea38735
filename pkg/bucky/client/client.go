package client

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/ledger"
	"github.com/code-payments/bucky-bank-server/pkg/bucky/runtime"
	"github.com/code-payments/bucky-bank-server/pkg/cache"
	"github.com/code-payments/bucky-bank-server/pkg/metrics"
	"github.com/code-payments/bucky-bank-server/pkg/retry"
	"github.com/code-payments/bucky-bank-server/pkg/retry/backoff"
	"github.com/code-payments/bucky-bank-server/pkg/solana"
)

const (
	metricsStructName = "bucky.client"
)

var (
	ErrUnexpectedAccount = errors.New("account isn't owned by the bucky bank program")
)

// Ledger is the subset of the runtime the client submits to and reads from
type Ledger interface {
	Execute(ctx context.Context, txn *solana.Transaction) (*runtime.Result, error)
	GetAccount(ctx context.Context, address ed25519.PublicKey) (*runtime.Account, error)
	GetLatestBlockhash() solana.Blockhash
}

// Client builds, signs and submits bucky bank instructions, and decodes the
// program's account state.
type Client struct {
	log       *logrus.Entry
	conf      *conf
	ledger    Ledger
	addresses cache.Cache
}

func New(ledger Ledger, configProvider ConfigProvider) *Client {
	conf := configProvider()
	return &Client{
		log:       logrus.StandardLogger().WithField("type", "bucky/client"),
		conf:      conf,
		ledger:    ledger,
		addresses: cache.NewCache(int(conf.addressCacheSize.Get(context.Background()))),
	}
}

// submit signs the instructions with a fresh blockhash and executes them,
// retrying when the transaction conflicts with a concurrent one. A
// transaction that executed but failed is returned with its error, which is
// a *solana.TransactionError.
func (c *Client) submit(ctx context.Context, method string, signer ed25519.PrivateKey, instructions ...solana.Instruction) (*runtime.Result, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, method)
	defer tracer.End()

	log := c.log.WithField("method", method)

	var result *runtime.Result
	attempts, err := retry.Retry(
		func() error {
			txn := solana.NewTransaction(signer.Public().(ed25519.PublicKey), instructions...)
			txn.SetBlockhash(c.ledger.GetLatestBlockhash())
			if err := txn.Sign(signer); err != nil {
				return errors.Wrap(err, "error signing transaction")
			}

			var err error
			result, err = c.ledger.Execute(ctx, &txn)
			return err
		},
		retry.RetriableErrors(runtime.ErrAccountInUse, ledger.ErrStaleAccountState),
		retry.Limit(uint(c.conf.maxSubmitAttempts.Get(ctx))),
		retry.Context(ctx),
		retry.BackoffWithJitter(backoff.BinaryExponential(10*time.Millisecond), c.conf.maxRetryBackoff.Get(ctx), 0.1),
	)
	if err != nil {
		log.WithError(err).WithField("attempts", attempts).Debug("failed to submit transaction")
		tracer.OnError(err)
		return nil, err
	}
	tracer.AddAttribute("attempts", attempts)

	log = log.WithField("signature", result.Signature)
	if result.Err != nil {
		log.WithError(result.Err).Debug("transaction failed")
		return result, result.Err
	}

	log.Trace("transaction succeeded")
	return result, nil
}
