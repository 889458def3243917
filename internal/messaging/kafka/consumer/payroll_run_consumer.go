package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go-payroll/internal/events"
	"go-payroll/internal/payrollrun"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumePayrollRunCompleted renders a payslip-register PDF for every
// completed run and drops it into storageDir. Fetch errors leave the message
// uncommitted so it is retried; decode errors are committed and dropped.
func ConsumePayrollRunCompleted(
	ctx context.Context,
	reader *kafkago.Reader,
	runService payrollrun.Service,
	storageDir string,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.payroll_run")
	log.Info("payroll run consumer started", zap.String("storage_dir", storageDir))

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("payroll run consumer stopped")
				return
			}
			log.Error("fetch payroll run message failed", zap.Error(err))
			continue
		}

		var event events.PayrollRunCompletedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode payroll run completed event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := writeRegister(ctx, runService, storageDir, event); err != nil {
			log.Error("write payslip register failed",
				zap.String("run_id", event.RunID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit payroll run message failed", zap.Error(err))
			continue
		}

		log.Info("payslip register written",
			zap.String("run_id", event.RunID),
			zap.String("company_id", event.CompanyID),
		)
	}
}

func writeRegister(ctx context.Context, runService payrollrun.Service, storageDir string, event events.PayrollRunCompletedEvent) error {
	run, err := runService.GetByID(ctx, event.CompanyID, event.RunID)
	if err != nil {
		return err
	}
	payslips, err := runService.GetPayslipsByRun(ctx, event.CompanyID, event.RunID)
	if err != nil {
		return err
	}

	pdf, err := payrollrun.BuildPayslipRegisterPDF(run, payslips)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("payslip-register-%s-%04d-%02d.pdf", event.RunID, event.Year, event.Month)
	return os.WriteFile(filepath.Join(storageDir, name), pdf, 0o644)
}
