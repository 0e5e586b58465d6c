package service

import (
	"context"
	"fmt"
	"learntwin_backend/internal/model"
	"learntwin_backend/internal/progression"
	"learntwin_backend/internal/repository"
	"learntwin_backend/internal/util"
	"learntwin_backend/pkg/logger"
	"learntwin_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 模块完成奖励的经验值
const moduleCompletionXP = 100

type AchievementService struct {
	AchievementRepo *repository.AchievementRepository
	MintRepo        *repository.MintRepository
	UserRepo        *repository.UserRepository
	Blockchain      *BlockchainService
}

func NewAchievementService(
	achievementRepo *repository.AchievementRepository,
	mintRepo *repository.MintRepository,
	userRepo *repository.UserRepository,
	blockchain *BlockchainService,
) *AchievementService {
	return &AchievementService{
		AchievementRepo: achievementRepo,
		MintRepo:        mintRepo,
		UserRepo:        userRepo,
		Blockchain:      blockchain,
	}
}

// SideEffectStatus 完成事件副作用的处理结果，
// 失败是可重试的提示，绝不回滚完成状态
type SideEffectStatus struct {
	Kind     string `json:"kind"` // module_mint / course_certificate
	TargetID uint   `json:"targetId"`
	Status   string `json:"status"` // confirmed / failed / already_confirmed
	TxRef    string `json:"txRef,omitempty"`
}

// HandleModuleCompleted 处理模块完成事件：记录成就、发XP、请求NFT铸造。
// (user, module) 的铸造恰好一次：已 confirmed 的记录直接短路，
// pending/failed 记录复用后重试，只有协作方确认后才置 confirmed
func (s *AchievementService) HandleModuleCompleted(ctx context.Context, userID uint, ev progression.Event) *SideEffectStatus {
	monitoring.CompletionEvents.WithLabelValues(string(ev.Type)).Inc()

	rec, err := s.MintRepo.FindModuleMint(userID, ev.ModuleID)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Log.Error("查询铸造记录失败", zap.Error(err), zap.Uint("moduleId", ev.ModuleID))
		return &SideEffectStatus{Kind: "module_mint", TargetID: ev.ModuleID, Status: "failed"}
	}

	if rec != nil && rec.Status == model.MintConfirmed {
		return &SideEffectStatus{Kind: "module_mint", TargetID: ev.ModuleID, Status: "already_confirmed", TxRef: rec.TxRef}
	}

	if rec == nil {
		rec = &model.MintRecord{
			UserID:      userID,
			ModuleID:    ev.ModuleID,
			ModuleTitle: ev.ModuleTitle,
			Score:       ev.Score,
			Status:      model.MintPending,
		}
		if err := s.MintRepo.CreateModuleMint(rec); err != nil {
			// 唯一键冲突说明并发请求已建立记录，重新读取即可
			existing, ferr := s.MintRepo.FindModuleMint(userID, ev.ModuleID)
			if ferr != nil {
				logger.Log.Error("创建铸造记录失败", zap.Error(err))
				return &SideEffectStatus{Kind: "module_mint", TargetID: ev.ModuleID, Status: "failed"}
			}
			rec = existing
			if rec.Status == model.MintConfirmed {
				return &SideEffectStatus{Kind: "module_mint", TargetID: ev.ModuleID, Status: "already_confirmed", TxRef: rec.TxRef}
			}
		}
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return &SideEffectStatus{Kind: "module_mint", TargetID: ev.ModuleID, Status: "failed"}
	}

	result, err := s.Blockchain.MintModuleNFT(ctx, &MintRequest{
		UserID:        userID,
		WalletAddress: user.WalletAddress,
		ModuleID:      ev.ModuleID,
		ModuleTitle:   ev.ModuleTitle,
		Score:         ev.Score,
	})
	if err != nil {
		monitoring.MintRequests.WithLabelValues("failed").Inc()
		logger.Log.Warn("NFT铸造请求失败，可重试",
			zap.Error(err), zap.Uint("userId", userID), zap.Uint("moduleId", ev.ModuleID))
		s.MintRepo.FailModuleMint(rec.ID, err.Error())
		return &SideEffectStatus{Kind: "module_mint", TargetID: ev.ModuleID, Status: "failed"}
	}

	if err := s.MintRepo.ConfirmModuleMint(rec.ID, result.TxRef); err != nil {
		logger.Log.Error("确认铸造记录失败", zap.Error(err))
		return &SideEffectStatus{Kind: "module_mint", TargetID: ev.ModuleID, Status: "failed"}
	}
	monitoring.MintRequests.WithLabelValues("confirmed").Inc()

	// 铸造确认后再落成就与XP，与护栏同一侧
	s.AchievementRepo.Create(&model.Achievement{
		UserID:   userID,
		ModuleID: ev.ModuleID,
		CourseID: ev.CourseID,
		Name:     fmt.Sprintf("完成模块「%s」", ev.ModuleTitle),
		EarnedXP: moduleCompletionXP,
	})
	s.UserRepo.UpdateXP(userID, moduleCompletionXP)

	return &SideEffectStatus{Kind: "module_mint", TargetID: ev.ModuleID, Status: "confirmed", TxRef: result.TxRef}
}

// HandleCourseCompleted 课程完成：签发证书，护栏语义与模块铸造一致
func (s *AchievementService) HandleCourseCompleted(ctx context.Context, userID uint, ev progression.Event) *SideEffectStatus {
	monitoring.CompletionEvents.WithLabelValues(string(ev.Type)).Inc()

	rec, err := s.MintRepo.FindCertificate(userID, ev.CourseID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return &SideEffectStatus{Kind: "course_certificate", TargetID: ev.CourseID, Status: "failed"}
	}
	if rec != nil && rec.Status == model.MintConfirmed {
		return &SideEffectStatus{Kind: "course_certificate", TargetID: ev.CourseID, Status: "already_confirmed", TxRef: rec.TxRef}
	}

	if rec == nil {
		rec = &model.CertificateRecord{
			UserID:      userID,
			CourseID:    ev.CourseID,
			CourseTitle: ev.CourseTitle,
			Status:      model.MintPending,
		}
		if err := s.MintRepo.CreateCertificate(rec); err != nil {
			existing, ferr := s.MintRepo.FindCertificate(userID, ev.CourseID)
			if ferr != nil {
				return &SideEffectStatus{Kind: "course_certificate", TargetID: ev.CourseID, Status: "failed"}
			}
			rec = existing
			if rec.Status == model.MintConfirmed {
				return &SideEffectStatus{Kind: "course_certificate", TargetID: ev.CourseID, Status: "already_confirmed", TxRef: rec.TxRef}
			}
		}
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return &SideEffectStatus{Kind: "course_certificate", TargetID: ev.CourseID, Status: "failed"}
	}

	result, err := s.Blockchain.IssueCertificate(ctx, &CertificateRequest{
		UserID:        userID,
		WalletAddress: user.WalletAddress,
		CourseID:      ev.CourseID,
		CourseTitle:   ev.CourseTitle,
	})
	if err != nil {
		monitoring.MintRequests.WithLabelValues("failed").Inc()
		logger.Log.Warn("证书签发请求失败，可重试",
			zap.Error(err), zap.Uint("userId", userID), zap.Uint("courseId", ev.CourseID))
		s.MintRepo.FailCertificate(rec.ID, err.Error())
		return &SideEffectStatus{Kind: "course_certificate", TargetID: ev.CourseID, Status: "failed"}
	}

	if err := s.MintRepo.ConfirmCertificate(rec.ID, result.TxRef); err != nil {
		return &SideEffectStatus{Kind: "course_certificate", TargetID: ev.CourseID, Status: "failed"}
	}
	monitoring.MintRequests.WithLabelValues("confirmed").Inc()

	s.AchievementRepo.Create(&model.Achievement{
		UserID:   userID,
		CourseID: ev.CourseID,
		Name:     fmt.Sprintf("完成课程「%s」", ev.CourseTitle),
		EarnedXP: moduleCompletionXP * 2,
	})
	s.UserRepo.UpdateXP(userID, moduleCompletionXP*2)

	return &SideEffectStatus{Kind: "course_certificate", TargetID: ev.CourseID, Status: "confirmed", TxRef: result.TxRef}
}

// RetryModuleMint 手动重试失败的铸造。完成状态不受铸造结果影响，
// 这里只负责把 pending/failed 的记录推进到 confirmed
func (s *AchievementService) RetryModuleMint(ctx context.Context, userID, moduleID uint) (*SideEffectStatus, error) {
	rec, err := s.MintRepo.FindModuleMint(userID, moduleID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrMintNotFound
	}
	if err != nil {
		return nil, err
	}
	if rec.Status == model.MintConfirmed {
		return nil, util.ErrMintAlreadyConfirmed
	}

	status := s.HandleModuleCompleted(ctx, userID, progression.Event{
		Type:        progression.EventModuleCompleted,
		ModuleID:    rec.ModuleID,
		ModuleTitle: rec.ModuleTitle,
		Score:       rec.Score,
	})
	return status, nil
}

func (s *AchievementService) Recent(userID uint, limit int) ([]model.Achievement, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.AchievementRepo.Recent(userID, limit)
}
