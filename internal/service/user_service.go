package service

import (
	"learntwin_backend/internal/model"
	"learntwin_backend/internal/repository"
	"learntwin_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo   *repository.UserRepository
	EnrollRepo *repository.EnrollmentRepository
}

func NewUserService(userRepo *repository.UserRepository, enrollRepo *repository.EnrollmentRepository) *UserService {
	return &UserService{
		UserRepo:   userRepo,
		EnrollRepo: enrollRepo,
	}
}

// ProfileUpdate 可更新的个人资料字段。钱包地址用于接收成就NFT
type ProfileUpdate struct {
	Name          string `json:"name"`
	Language      string `json:"language"`
	Avatar        string `json:"avatar"`
	WalletAddress string `json:"walletAddress"`
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(userID uint, update *ProfileUpdate) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	if update.Name != "" {
		user.Name = update.Name
	}
	if update.Language != "" {
		user.Language = update.Language
	}
	if update.Avatar != "" {
		user.Avatar = update.Avatar
	}
	if update.WalletAddress != "" {
		user.WalletAddress = update.WalletAddress
	}

	if err := s.UserRepo.Save(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Enrollments(userID uint) ([]model.Enrollment, error) {
	return s.EnrollRepo.ListByUser(userID)
}
