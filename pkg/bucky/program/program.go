package program

import (
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/runtime"
	"github.com/code-payments/bucky-bank-server/pkg/metrics"
	"github.com/code-payments/bucky-bank-server/pkg/solana/buckybank"
)

// Program is the bucky bank on-ledger program. It implements runtime.Program.
type Program struct {
	log  *logrus.Entry
	conf *conf
}

func New(configProvider ConfigProvider) *Program {
	return &Program{
		log:  logrus.StandardLogger().WithField("type", "bucky/program"),
		conf: configProvider(),
	}
}

func (p *Program) Id() ed25519.PublicKey {
	return buckybank.PROGRAM_ID
}

func (p *Program) Name() string {
	return "bucky_bank"
}

// Process dispatches an instruction by its discriminator
func (p *Program) Process(ctx *runtime.InvokeContext, accounts []*runtime.AccountInfo, data []byte) error {
	instructionType := buckybank.GetInstructionType(data)

	tracer := metrics.TraceMethodCall(ctx.Context(), metricsStructName, instructionType.String())
	defer tracer.End()

	start := time.Now()

	var handler func(*runtime.InvokeContext, []*runtime.AccountInfo, []byte) error
	switch instructionType {
	case buckybank.InstructionTypeInitializeGlobalStats:
		handler = p.initializeGlobalStats
	case buckybank.InstructionTypeCreateBank:
		handler = p.createBank
	case buckybank.InstructionTypeDeposit:
		handler = p.deposit
	case buckybank.InstructionTypeRequestWithdrawal:
		handler = p.requestWithdrawal
	case buckybank.InstructionTypeApproveWithdrawal:
		handler = p.approveWithdrawal
	case buckybank.InstructionTypeWithdraw:
		handler = p.withdraw
	default:
		tracer.OnError(buckybank.ErrInstructionFallbackNotFound)
		return buckybank.ErrInstructionFallbackNotFound
	}

	ctx.Log("Instruction: %s", instructionType)

	err := handler(ctx, accounts, data)
	if err != nil {
		p.log.WithFields(logrus.Fields{
			"method":      "Process",
			"instruction": instructionType.String(),
		}).WithError(err).Debug("instruction failed")
		tracer.OnError(err)
	}

	recordInstructionProcessedEvent(ctx.Context(), instructionType, err, time.Since(start))
	return err
}

// DescribeEvent returns the event's type name and the bank it concerns
func (p *Program) DescribeEvent(data []byte) (string, ed25519.PublicKey, error) {
	event, err := buckybank.DecodeEvent(data)
	if err != nil {
		return "", nil, err
	}
	return event.Type().String(), event.Bank(), nil
}

func (p *Program) emit(ctx *runtime.InvokeContext, event buckybank.Event) {
	p.log.WithFields(logrus.Fields{
		"method": "emit",
		"event":  event.Type().String(),
		"bank":   base58.Encode(event.Bank()),
	}).Debug("emitting event")

	ctx.EmitEvent(event.Marshal())
}
