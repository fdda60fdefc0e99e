package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"freight-system/internal/authz"
	"freight-system/internal/dto"
	"freight-system/internal/entities"
	"freight-system/internal/repositories"
	"freight-system/pkg/constants"
	apperrors "freight-system/pkg/errors"
	"freight-system/pkg/utils"
)

type JobServiceInterface interface {
	// CreateJob открывает джоб из одобренной клиентом техкотировки.
	// Не более одного джоба на котировку; номер выдаётся классифицированным
	// счётчиком в формате <mode>-<direction>-<yy>-<seq>.
	CreateJob(ctx context.Context, data dto.CreateJobDTO) (*dto.JobDTO, error)
	FindJob(ctx context.Context, id uint64) (*dto.JobDTO, error)
	GetJobs(ctx context.Context, limit, offset uint64) ([]dto.JobDTO, uint64, error)
	InitiateJob(ctx context.Context, id uint64) (*dto.JobDTO, error)
	// AdvanceStage двигает указатель этапа на следующий. Предусловие -
	// подтверждённый чек-лист документов; достижение финального этапа
	// джоб не завершает.
	AdvanceStage(ctx context.Context, id uint64) (*dto.JobDTO, error)
	CompleteJob(ctx context.Context, id uint64) (*dto.JobDTO, error)
	// UpdateDocument правит чек-лист. После выхода джоба из NEW чек-лист
	// закрыт: нужен одноразовый грант либо суперпривилегия.
	UpdateDocument(ctx context.Context, id uint64, data dto.ConfirmDocumentDTO) (*dto.JobDTO, error)
	// DeleteJob удаляет джоб. Допустимо только в статусе NEW.
	DeleteJob(ctx context.Context, id uint64) error
}

type JobService struct {
	txManager repositories.TxManagerInterface
	jobRepo   repositories.JobRepositoryInterface
	tqRepo    repositories.TechnicalQuoteRepositoryInterface
	quoteRepo repositories.QuoteRepositoryInterface
	seqRepo   repositories.SequenceRepositoryInterface
	gate      *authz.Gatekeeper
	audit     AuditServiceInterface
	logger    *zap.Logger
}

func NewJobService(
	txManager repositories.TxManagerInterface,
	jobRepo repositories.JobRepositoryInterface,
	tqRepo repositories.TechnicalQuoteRepositoryInterface,
	quoteRepo repositories.QuoteRepositoryInterface,
	seqRepo repositories.SequenceRepositoryInterface,
	gate *authz.Gatekeeper,
	audit AuditServiceInterface,
	logger *zap.Logger,
) JobServiceInterface {
	return &JobService{
		txManager: txManager,
		jobRepo:   jobRepo,
		tqRepo:    tqRepo,
		quoteRepo: quoteRepo,
		seqRepo:   seqRepo,
		gate:      gate,
		audit:     audit,
		logger:    logger,
	}
}

func (s *JobService) CreateJob(ctx context.Context, data dto.CreateJobDTO) (*dto.JobDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gate.Can(perms, authz.JobsCreate) {
		return nil, apperrors.ErrPermissionDenied
	}

	tq, err := s.tqRepo.FindByID(ctx, data.TechnicalQuoteID)
	if err != nil {
		return nil, err
	}
	if tq.Status != constants.TechnicalQuoteStatusClientApproved {
		return nil, apperrors.ErrInvalidState
	}

	quote, err := s.quoteRepo.FindByID(ctx, tq.QuoteID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	stages := make([]entities.Stage, 0, len(constants.JobStageNames))
	for i, name := range constants.JobStageNames {
		stages = append(stages, entities.Stage{Number: i + 1, Name: name})
	}
	// Этап "Job opened" закрывается самим фактом создания.
	stages[0].Completed = true
	stages[0].CompletedAt = &now

	checklist := constants.DocumentChecklistForDirection(quote.Direction)
	documents := make([]entities.Document, 0, len(checklist))
	for _, name := range checklist {
		documents = append(documents, entities.Document{Name: name})
	}

	var jobID uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		yy := now.Format("06")
		scope := fmt.Sprintf("%s-%s-%s", quote.Mode, quote.Direction, yy)
		seq, err := s.seqRepo.NextInTx(ctx, tx, scope)
		if err != nil {
			return fmt.Errorf("не удалось получить номер джоба: %w", err)
		}

		job := &entities.Job{
			Number:       fmt.Sprintf("%s-%04d", scope, seq),
			QuoteID:      tq.QuoteID,
			Status:       constants.JobStatusNew,
			CurrentStage: 1,
			Stages:       stages,
			Documents:    documents,
		}
		createdID, err := s.jobRepo.CreateInTx(ctx, tx, job)
		if err != nil {
			return err
		}
		jobID = createdID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, constants.EntityTypeJob, jobID, constants.AuditActionCreate,
		"Создан джоб из одобренной котировки", actorID,
		map[string]interface{}{"quote_id": tq.QuoteID, "technical_quote_id": tq.ID})

	return s.FindJob(ctx, jobID)
}

func (s *JobService) FindJob(ctx context.Context, id uint64) (*dto.JobDTO, error) {
	job, err := s.jobRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toJobDTO(job), nil
}

func (s *JobService) GetJobs(ctx context.Context, limit, offset uint64) ([]dto.JobDTO, uint64, error) {
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, 0, err
	}
	if !s.gate.Can(perms, authz.JobsView) {
		return nil, 0, apperrors.ErrPermissionDenied
	}

	if limit == 0 || limit > 100 {
		limit = 20
	}
	jobs, total, err := s.jobRepo.GetJobs(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.JobDTO, 0, len(jobs))
	for i := range jobs {
		result = append(result, *toJobDTO(&jobs[i]))
	}
	return result, total, nil
}

func (s *JobService) InitiateJob(ctx context.Context, id uint64) (*dto.JobDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gate.Can(perms, authz.JobsUpdate) {
		return nil, apperrors.ErrPermissionDenied
	}

	ok, err := s.jobRepo.UpdateStatusConditional(ctx, id, constants.JobStatusNew, constants.JobStatusActive)
	if err != nil {
		return nil, err
	}
	if !ok {
		fresh, err := s.jobRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.NewInvalidTransitionError(fresh.Status, constants.JobStatusActive)
	}

	s.audit.Record(ctx, constants.EntityTypeJob, id, constants.AuditActionJobInitiated,
		"Джоб переведён в работу", actorID, nil)

	return s.FindJob(ctx, id)
}

func (s *JobService) AdvanceStage(ctx context.Context, id uint64) (*dto.JobDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gate.Can(perms, authz.JobsUpdate) {
		return nil, apperrors.ErrPermissionDenied
	}

	var reached entities.Stage
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		job, err := s.jobRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if job.Status != constants.JobStatusActive {
			return apperrors.ErrInvalidState
		}
		if !job.AllDocumentsConfirmed() {
			return apperrors.NewPreconditionFailedError("Не все документы чек-листа подтверждены")
		}
		if job.CurrentStage >= len(job.Stages) {
			return apperrors.NewPreconditionFailedError("Джоб уже на финальном этапе")
		}

		now := time.Now()
		job.CurrentStage++
		stage := &job.Stages[job.CurrentStage-1]
		stage.Completed = true
		stage.CompletedAt = &now
		reached = *stage
		return s.jobRepo.UpdateStagesInTx(ctx, tx, job)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, constants.EntityTypeJob, id, constants.AuditActionStageAdvanced,
		fmt.Sprintf("Этап %d: %s", reached.Number, reached.Name), actorID,
		map[string]interface{}{"stage": reached.Number})

	return s.FindJob(ctx, id)
}

func (s *JobService) CompleteJob(ctx context.Context, id uint64) (*dto.JobDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gate.Can(perms, authz.JobsUpdate) {
		return nil, apperrors.ErrPermissionDenied
	}

	job, err := s.jobRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != constants.JobStatusActive {
		return nil, apperrors.NewInvalidTransitionError(job.Status, constants.JobStatusCompleted)
	}
	if job.CurrentStage < len(job.Stages) {
		return nil, apperrors.NewPreconditionFailedError("Не пройдены все этапы джоба")
	}

	ok, err := s.jobRepo.UpdateStatusConditional(ctx, id, constants.JobStatusActive, constants.JobStatusCompleted)
	if err != nil {
		return nil, err
	}
	if !ok {
		fresh, err := s.jobRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.NewInvalidTransitionError(fresh.Status, constants.JobStatusCompleted)
	}

	s.audit.Record(ctx, constants.EntityTypeJob, id, constants.AuditActionJobCompleted,
		"Джоб завершён", actorID, nil)

	return s.FindJob(ctx, id)
}

func (s *JobService) UpdateDocument(ctx context.Context, id uint64, data dto.ConfirmDocumentDTO) (*dto.JobDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gate.Can(perms, authz.JobsUpdate) {
		return nil, apperrors.ErrPermissionDenied
	}
	if data.Confirmed && !data.Uploaded {
		return nil, apperrors.NewValidationError("Документ нельзя подтвердить без загрузки")
	}

	super := s.gate.IsSuperPrivileged(perms)
	consumed := false

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		job, err := s.jobRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if job.IsLocked {
			return apperrors.ErrLocked
		}
		if job.Status != constants.JobStatusNew && !super {
			if !job.Grant.IsHeldBy(actorID) {
				return apperrors.NewEditApprovalRequiredError(constants.EntityTypeJob, id)
			}
			job.Grant.Consume()
			consumed = true
		}

		found := false
		for i := range job.Documents {
			if job.Documents[i].Name == data.Name {
				job.Documents[i].Uploaded = data.Uploaded
				job.Documents[i].Confirmed = data.Confirmed
				found = true
				break
			}
		}
		if !found {
			return apperrors.NewValidationError("Документ не входит в чек-лист: %s", data.Name)
		}
		return s.jobRepo.UpdateDocumentsInTx(ctx, tx, job)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, constants.EntityTypeJob, id, constants.AuditActionUpdate,
		fmt.Sprintf("Обновлён документ чек-листа: %s", data.Name), actorID,
		map[string]interface{}{"document": data.Name, "uploaded": data.Uploaded, "confirmed": data.Confirmed})
	if consumed {
		s.audit.Record(ctx, constants.EntityTypeJob, id, constants.AuditActionEditConsumed,
			"Израсходован одноразовый доступ на редактирование", actorID, nil)
	}

	return s.FindJob(ctx, id)
}

func (s *JobService) DeleteJob(ctx context.Context, id uint64) error {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return err
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return err
	}
	if !s.gate.Can(perms, authz.JobsDelete) {
		return apperrors.ErrPermissionDenied
	}

	var number string
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		job, err := s.jobRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if job.Status != constants.JobStatusNew {
			return apperrors.ErrInvalidState
		}
		number = job.Number

		ok, err := s.jobRepo.DeleteConditional(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrInvalidState
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, constants.EntityTypeJob, id, constants.AuditActionDelete,
		fmt.Sprintf("Удалён джоб %s", number), actorID, nil)
	return nil
}

func toJobDTO(job *entities.Job) *dto.JobDTO {
	stages := make([]dto.StageDTO, 0, len(job.Stages))
	for _, st := range job.Stages {
		stages = append(stages, dto.StageDTO{
			Number:      st.Number,
			Name:        st.Name,
			Completed:   st.Completed,
			CompletedAt: st.CompletedAt,
		})
	}
	documents := make([]dto.DocumentDTO, 0, len(job.Documents))
	for _, doc := range job.Documents {
		documents = append(documents, dto.DocumentDTO{
			Name:      doc.Name,
			Uploaded:  doc.Uploaded,
			Confirmed: doc.Confirmed,
		})
	}
	return &dto.JobDTO{
		ID:           job.ID,
		Number:       job.Number,
		QuoteID:      job.QuoteID,
		Status:       job.Status,
		CurrentStage: job.CurrentStage,
		Stages:       stages,
		Documents:    documents,
		IsLocked:     job.IsLocked,
		Grant:        toGrantDTO(&job.Grant),
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
}
