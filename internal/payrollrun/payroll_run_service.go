package payrollrun

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go-payroll/internal/employee"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	payrollrunerrors "go-payroll/internal/payrollrun/errors"
	"go-payroll/internal/salarycomponent"
	"go-payroll/internal/salarystructure"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const defaultConcurrency = 8

// EmployeeDirectory is the slice of the employee repository Process needs.
type EmployeeDirectory interface {
	FindActiveByCompany(ctx context.Context, companyID string) ([]employee.Employee, error)
}

// PresenceCounter is the slice of the attendance repository Process needs.
type PresenceCounter interface {
	CountPresentDays(ctx context.Context, companyID, employeeID string, month, year int) (int64, error)
	HasAnyInMonth(ctx context.Context, companyID, employeeID string, month, year int) (bool, error)
}

// StructureResolver supplies prefetched resolver inputs per structure so no
// catalog I/O happens inside the per-employee workers.
type StructureResolver interface {
	ResolverInputs(ctx context.Context, companyID, structureID string) ([]salarystructure.StructureLine, map[uuid.UUID]salarycomponent.SalaryComponent, error)
}

type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreateRunRequest) (RunResponse, error)
	GetAll(ctx context.Context, companyID string) ([]RunResponse, error)
	GetByID(ctx context.Context, companyID, id string) (RunResponse, error)
	Process(ctx context.Context, companyID, actorID, id string) (RunSummary, error)
	Delete(ctx context.Context, companyID, id string) error
	GetPayslipsByRun(ctx context.Context, companyID, runID string) ([]PayslipResponse, error)
	GetPayslipsByEmployee(ctx context.Context, companyID, employeeID string, year *int) ([]PayslipResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	employees  EmployeeDirectory
	presence   PresenceCounter
	structures StructureResolver
	outbox     kafka.OutboxRepository
	logger     *zap.Logger

	// fullAttendanceFallback treats an employee-month with zero attendance
	// rows as fully attended instead of fully absent. Defaults to on; every
	// use is logged.
	fullAttendanceFallback bool
	concurrency            int
}

type Option func(*service)

func WithLogger(l *zap.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l.Named("payrollrun.service")
		}
	}
}

func WithFullAttendanceFallback(enabled bool) Option {
	return func(s *service) { s.fullAttendanceFallback = enabled }
}

func WithConcurrency(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees EmployeeDirectory,
	presence PresenceCounter,
	structures StructureResolver,
	outbox kafka.OutboxRepository,
	opts ...Option,
) Service {
	s := &service{
		db:                     db,
		repo:                   repo,
		employees:              employees,
		presence:               presence,
		structures:             structures,
		outbox:                 outbox,
		logger:                 zap.L().Named("payrollrun.service"),
		fullAttendanceFallback: true,
		concurrency:            defaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, companyID, actorID string, req CreateRunRequest) (RunResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return RunResponse{}, payrollrunerrors.ErrInvalidCompanyID
	}
	createdByUUID, err := uuid.Parse(actorID)
	if err != nil {
		return RunResponse{}, payrollrunerrors.ErrInvalidActorID
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 || req.Year > 2100 {
		return RunResponse{}, payrollrunerrors.ErrInvalidPeriod
	}

	// Pre-flight duplicate check for a friendly error; the unique index and
	// the 23505 mapper close the race the check cannot.
	exists, err := qtx.ExistsForPeriod(ctx, companyID, req.Month, req.Year)
	if err != nil {
		return RunResponse{}, err
	}
	if exists {
		return RunResponse{}, payrollrunerrors.ErrDuplicateRun
	}

	run := &PayrollRun{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		Month:      req.Month,
		Year:       req.Year,
		Status:     StatusDraft,
		CreatedBy:  createdByUUID,
		TotalGross: decimal.Zero,
		TotalNet:   decimal.Zero,
	}

	if err := qtx.Create(ctx, run); err != nil {
		return RunResponse{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return RunResponse{}, err
	}

	s.logger.Info("payroll run created",
		zap.String("run_id", run.ID.String()),
		zap.String("company_id", companyID),
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
	)
	return mapRunToResponse(*run), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]RunResponse, error) {
	runs, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	resp := make([]RunResponse, len(runs))
	for i, run := range runs {
		resp[i] = mapRunToResponse(run)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (RunResponse, error) {
	run, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RunResponse{}, payrollrunerrors.ErrRunNotFound
		}
		return RunResponse{}, err
	}
	return mapRunToResponse(*run), nil
}

// Process computes every payslip for the run. The DRAFT -> PROCESSING swap
// is a single atomic UPDATE, so concurrent Process calls race on the row and
// exactly one wins. Any failure after the swap deletes the run's payslips
// and reverts to DRAFT, leaving the run retryable from scratch.
func (s *service) Process(ctx context.Context, companyID, actorID, id string) (RunSummary, error) {
	logger := contextutil.GetLogger(ctx, s.logger).With(
		zap.String("run_id", id),
		zap.String("company_id", companyID),
	)

	if _, err := uuid.Parse(companyID); err != nil {
		return RunSummary{}, payrollrunerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(actorID); err != nil {
		return RunSummary{}, payrollrunerrors.ErrInvalidActorID
	}

	run, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RunSummary{}, payrollrunerrors.ErrRunNotFound
		}
		return RunSummary{}, err
	}

	swapped, err := s.repo.MarkProcessing(ctx, companyID, id)
	if err != nil {
		return RunSummary{}, err
	}
	if !swapped {
		logger.Warn("process rejected, run not in draft", zap.String("status", run.Status))
		return RunSummary{}, payrollrunerrors.ErrProcessOnlyDraft
	}

	summary, err := s.computePayslips(ctx, logger, run)
	if err != nil {
		s.abortRun(companyID, id, logger)
		return RunSummary{}, payrollrunerrors.ProcessingFailed(err)
	}

	if err := s.completeRun(ctx, run, summary); err != nil {
		s.abortRun(companyID, id, logger)
		return RunSummary{}, payrollrunerrors.ProcessingFailed(err)
	}

	logger.Info("payroll run completed",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.String("total_net", summary.TotalNet),
	)
	return summary, nil
}

func (s *service) computePayslips(ctx context.Context, logger *zap.Logger, run *PayrollRun) (RunSummary, error) {
	companyID := run.CompanyID.String()
	workingDays := WorkingDaysInMonth(run.Month, run.Year)

	roster, err := s.employees.FindActiveByCompany(ctx, companyID)
	if err != nil {
		return RunSummary{}, err
	}

	inputs, err := s.prefetchStructures(ctx, companyID, roster)
	if err != nil {
		return RunSummary{}, err
	}

	var (
		mu         sync.Mutex
		processed  int
		skipped    int
		totalGross = decimal.Zero
		totalNet   = decimal.Zero
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, empl := range roster {
		empl := empl
		if empl.CurrentStructureID == nil {
			logger.Warn("employee skipped, no salary structure assigned",
				zap.String("employee_id", empl.ID.String()),
			)
			skipped++
			continue
		}
		in := inputs[*empl.CurrentStructureID]

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			presentDays, err := s.presentDaysFor(gctx, logger, companyID, empl.ID.String(), run.Month, run.Year, workingDays)
			if err != nil {
				return err
			}

			result, err := salarystructure.ResolveGross(in.lines, in.components, workingDays, presentDays)
			if err != nil {
				return err
			}

			netPay := result.GrossProRated.Sub(result.TotalDeductions)
			if netPay.IsNegative() {
				netPay = decimal.Zero
			}

			payslip := buildPayslip(run, empl.ID, workingDays, presentDays, result, netPay)
			if err := s.repo.CreatePayslip(gctx, payslip); err != nil {
				return err
			}

			mu.Lock()
			processed++
			totalGross = totalGross.Add(result.GrossProRated)
			totalNet = totalNet.Add(netPay)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:      run.ID.String(),
		Processed:  processed,
		Skipped:    skipped,
		TotalGross: totalGross.StringFixed(2),
		TotalNet:   totalNet.StringFixed(2),
	}, nil
}

type resolverInput struct {
	lines      []salarystructure.StructureLine
	components map[uuid.UUID]salarycomponent.SalaryComponent
}

func (s *service) prefetchStructures(ctx context.Context, companyID string, roster []employee.Employee) (map[uuid.UUID]resolverInput, error) {
	inputs := make(map[uuid.UUID]resolverInput)
	for _, empl := range roster {
		if empl.CurrentStructureID == nil {
			continue
		}
		structureID := *empl.CurrentStructureID
		if _, ok := inputs[structureID]; ok {
			continue
		}
		lines, components, err := s.structures.ResolverInputs(ctx, companyID, structureID.String())
		if err != nil {
			return nil, err
		}
		inputs[structureID] = resolverInput{lines: lines, components: components}
	}
	return inputs, nil
}

func (s *service) presentDaysFor(ctx context.Context, logger *zap.Logger, companyID, employeeID string, month, year, workingDays int) (int, error) {
	hasAny, err := s.presence.HasAnyInMonth(ctx, companyID, employeeID, month, year)
	if err != nil {
		return 0, err
	}
	if !hasAny {
		if s.fullAttendanceFallback {
			logger.Info("full attendance fallback applied",
				zap.String("employee_id", employeeID),
			)
			return workingDays, nil
		}
		return 0, nil
	}

	count, err := s.presence.CountPresentDays(ctx, companyID, employeeID, month, year)
	if err != nil {
		return 0, err
	}
	presentDays := int(count)
	// Weekend clock-ins can push the raw count past the Mon-Fri working
	// days; pay is capped at a full month.
	if presentDays > workingDays {
		presentDays = workingDays
	}
	return presentDays, nil
}

func buildPayslip(run *PayrollRun, employeeID uuid.UUID, workingDays, presentDays int, result salarystructure.ResolveResult, netPay decimal.Decimal) *Payslip {
	payslip := &Payslip{
		ID:              uuid.New(),
		CompanyID:       run.CompanyID,
		RunID:           run.ID,
		EmployeeID:      employeeID,
		WorkingDays:     workingDays,
		PresentDays:     presentDays,
		GrossEarnings:   result.GrossProRated,
		TotalDeductions: result.TotalDeductions,
		NetPay:          netPay,
	}

	position := 0
	for _, line := range result.Breakdown.Earnings {
		payslip.Lines = append(payslip.Lines, newPayslipLine(payslip, line, position))
		position++
	}
	for _, line := range result.Breakdown.Deductions {
		payslip.Lines = append(payslip.Lines, newPayslipLine(payslip, line, position))
		position++
	}
	return payslip
}

func newPayslipLine(payslip *Payslip, line salarystructure.ResolvedLine, position int) PayslipLine {
	return PayslipLine{
		ID:        uuid.New(),
		PayslipID: payslip.ID,
		CompanyID: payslip.CompanyID,
		Kind:      line.Kind,
		Code:      line.Code,
		Name:      line.Name,
		Amount:    line.Amount,
		Note:      line.Note,
		Position:  position,
	}
}

// completeRun flips PROCESSING -> COMPLETED and queues the completion event
// through the outbox in the same transaction.
func (s *service) completeRun(ctx context.Context, run *PayrollRun, summary RunSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := time.Now().UTC()

	totalGross, err := decimal.NewFromString(summary.TotalGross)
	if err != nil {
		return err
	}
	totalNet, err := decimal.NewFromString(summary.TotalNet)
	if err != nil {
		return err
	}

	if err := qtx.CompleteRun(ctx, run.CompanyID.String(), run.ID.String(), now, totalGross, totalNet); err != nil {
		return err
	}

	payload, err := json.Marshal(events.PayrollRunCompletedEvent{
		EventType:  "payroll.run.completed",
		RunID:      run.ID.String(),
		CompanyID:  run.CompanyID.String(),
		Month:      run.Month,
		Year:       run.Year,
		Processed:  summary.Processed,
		TotalNet:   summary.TotalNet,
		OccurredAt: now,
	})
	if err != nil {
		return err
	}

	outboxEvent := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "payroll_run",
		AggregateID:   run.ID.String(),
		EventType:     "payroll.run.completed",
		Topic:         events.PayrollRunCompletedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := s.outbox.WithTx(tx).Create(ctx, outboxEvent); err != nil {
		return err
	}

	return tx.Commit()
}

// abortRun is best-effort cleanup after a processing failure. It runs on a
// fresh context so a canceled request context cannot strand the run in
// PROCESSING. Cleanup only touches a run still in PROCESSING; anything else
// means another writer got here first and deleting its payslips would
// corrupt a finished run.
func (s *service) abortRun(companyID, id string, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	run, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		logger.Error("abort run status check failed", zap.Error(err))
		return
	}
	if run.Status != StatusProcessing {
		logger.Warn("abort run skipped, run no longer processing", zap.String("status", run.Status))
		return
	}

	if err := s.repo.DeletePayslipsByRun(ctx, companyID, id); err != nil {
		logger.Error("abort run payslip cleanup failed", zap.Error(err))
	}
	if err := s.repo.RevertToDraft(ctx, companyID, id); err != nil {
		logger.Error("abort run status revert failed", zap.Error(err))
		return
	}
	logger.Warn("payroll run reverted to draft")
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	run, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return payrollrunerrors.ErrRunNotFound
		}
		return err
	}
	if run.Status != StatusDraft {
		return payrollrunerrors.ErrDeleteOnlyDraft
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) GetPayslipsByRun(ctx context.Context, companyID, runID string) ([]PayslipResponse, error) {
	if _, err := s.repo.FindByIDAndCompany(ctx, companyID, runID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollrunerrors.ErrRunNotFound
		}
		return nil, err
	}

	payslips, err := s.repo.FindPayslipsByRun(ctx, companyID, runID)
	if err != nil {
		return nil, err
	}
	return mapPayslipsToResponse(payslips), nil
}

func (s *service) GetPayslipsByEmployee(ctx context.Context, companyID, employeeID string, year *int) ([]PayslipResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, payrollrunerrors.ErrInvalidEmployeeID
	}
	payslips, err := s.repo.FindPayslipsByEmployee(ctx, companyID, employeeID, year)
	if err != nil {
		return nil, err
	}
	return mapPayslipsToResponse(payslips), nil
}

func mapRunToResponse(run PayrollRun) RunResponse {
	resp := RunResponse{
		ID:         run.ID.String(),
		CompanyID:  run.CompanyID.String(),
		Month:      run.Month,
		Year:       run.Year,
		Status:     run.Status,
		CreatedBy:  run.CreatedBy.String(),
		TotalGross: run.TotalGross.StringFixed(2),
		TotalNet:   run.TotalNet.StringFixed(2),
	}
	if run.ProcessedAt != nil {
		v := run.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &v
	}
	return resp
}

func mapPayslipsToResponse(payslips []Payslip) []PayslipResponse {
	resp := make([]PayslipResponse, len(payslips))
	for i, p := range payslips {
		lines := make([]PayslipLineResponse, len(p.Lines))
		for j, line := range p.Lines {
			lines[j] = PayslipLineResponse{
				Kind:     line.Kind,
				Code:     line.Code,
				Name:     line.Name,
				Amount:   line.Amount.StringFixed(2),
				Note:     line.Note,
				Position: line.Position,
			}
		}
		resp[i] = PayslipResponse{
			ID:              p.ID.String(),
			RunID:           p.RunID.String(),
			EmployeeID:      p.EmployeeID.String(),
			WorkingDays:     p.WorkingDays,
			PresentDays:     p.PresentDays,
			GrossEarnings:   p.GrossEarnings.StringFixed(2),
			TotalDeductions: p.TotalDeductions.StringFixed(2),
			NetPay:          p.NetPay.StringFixed(2),
			Lines:           lines,
		}
	}
	return resp
}
