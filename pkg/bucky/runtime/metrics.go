package runtime

import (
	"context"
	"time"

	"github.com/code-payments/bucky-bank-server/pkg/metrics"
	"github.com/code-payments/bucky-bank-server/pkg/solana"
)

const (
	metricsStructName = "bucky.runtime"

	transactionExecutedEventName = "BuckyRuntimeTransactionExecuted"
	executeDurationMetricName    = "BuckyRuntimeExecuteDuration"
	airdropEventName             = "BuckyRuntimeAirdrop"
)

func recordTransactionExecutedEvent(ctx context.Context, instructions int, txErr *solana.TransactionError, duration time.Duration) {
	kvs := map[string]interface{}{
		"success":      txErr == nil,
		"instructions": instructions,
	}

	if txErr != nil {
		kvs["error_key"] = string(txErr.ErrorKey())
		if ixErr := txErr.InstructionError(); ixErr != nil {
			kvs["instruction_error_key"] = string(ixErr.ErrorKey())
		}
		if custom := txErr.CustomError(); custom != nil {
			kvs["custom_error_code"] = uint32(*custom)
		}
	}

	metrics.RecordEvent(ctx, transactionExecutedEventName, kvs)
	metrics.RecordDuration(ctx, executeDurationMetricName, duration)
}

func recordAirdropEvent(ctx context.Context, lamports uint64) {
	metrics.RecordEvent(ctx, airdropEventName, map[string]interface{}{
		"lamports": lamports,
	})
}
