package program

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/code-payments/bucky-bank-server/pkg/metrics"
	"github.com/code-payments/bucky-bank-server/pkg/solana/buckybank"
)

const (
	metricsStructName = "bucky.program"

	instructionProcessedEventName = "BuckyBankInstructionProcessed"
)

func recordInstructionProcessedEvent(ctx context.Context, instructionType buckybank.InstructionType, err error, duration time.Duration) {
	kvs := map[string]interface{}{
		"instruction": instructionType.String(),
		"success":     err == nil,
		"duration_us": duration.Microseconds(),
	}

	if err != nil {
		var coded interface{ Code() uint32 }
		if errors.As(err, &coded) {
			kvs["error_code"] = coded.Code()
			kvs["error_name"] = buckybank.ErrorNameFromCode(coded.Code())
		} else {
			kvs["error"] = err.Error()
		}
	}

	metrics.RecordEvent(ctx, instructionProcessedEventName, kvs)
}
