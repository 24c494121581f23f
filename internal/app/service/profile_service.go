package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/coderr-app/coderr-backend/internal/app/model"
	"github.com/coderr-app/coderr-backend/internal/app/repository"
	"github.com/coderr-app/coderr-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrBusinessProfileNotFound = errors.New("business profile not found")
	ErrCustomerProfileNotFound = errors.New("customer profile not found")
	// ErrAmbiguousProfile marks a user holding both profile types. The
	// classifier refuses to guess which one wins.
	ErrAmbiguousProfile = errors.New("user has both a business and a customer profile")
)

// UserSummary is the compact user representation embedded in offer, order,
// review and profile payloads.
type UserSummary struct {
	ID        uint           `json:"id"`
	Username  string         `json:"username"`
	Email     string         `json:"email"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	CreatedAt time.Time      `json:"created_at"`
	File      string         `json:"file"`
	Tel       string         `json:"tel"`
	Type      model.UserType `json:"type"`
}

// BusinessProfileData is the business profile payload with its derived
// fields. AvgRating is either a float rounded to one decimal or the string
// "-" when the provider has no reviews yet.
type BusinessProfileData struct {
	ID             uint        `json:"id"`
	CompanyName    string      `json:"company_name"`
	CompanyAddress string      `json:"company_address"`
	CompanyWebsite string      `json:"company_website"`
	Description    string      `json:"description"`
	Tel            string      `json:"tel"`
	Location       string      `json:"location"`
	WorkingHours   string      `json:"working_hours"`
	CreatedAt      time.Time   `json:"created_at"`
	User           UserSummary `json:"user"`
	AvgRating      interface{} `json:"avg_rating"`
	PendingOrders  int64       `json:"pending_orders"`
	Email          string      `json:"email"`
	Username       string      `json:"username"`
	ProfileImage   string      `json:"profile_image"`
}

// ProfileEnvelope is the unified representation served by the generic
// profile endpoint. The type-specific fields are null for customers.
type ProfileEnvelope struct {
	ID           uint           `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	CreatedAt    time.Time      `json:"created_at"`
	File         string         `json:"file"`
	Type         model.UserType `json:"type"`
	ProfileData  interface{}    `json:"profile_data"`
	Tel          *string        `json:"tel"`
	Location     *string        `json:"location"`
	Description  *string        `json:"description"`
	WorkingHours *string        `json:"working_hours"`
}

type ProfileUpdateInput struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`

	// business half
	CompanyName    *string `json:"company_name"`
	CompanyAddress *string `json:"company_address"`
	CompanyWebsite *string `json:"company_website"`
	Description    *string `json:"description"`
	Tel            *string `json:"tel"`
	Location       *string `json:"location"`
	WorkingHours   *string `json:"working_hours"`

	// customer half
	File *string `json:"file"`
}

type BusinessProfileUpdateInput struct {
	CompanyName    *string `json:"company_name"`
	CompanyAddress *string `json:"company_address"`
	CompanyWebsite *string `json:"company_website"`
	Description    *string `json:"description"`
	Tel            *string `json:"tel"`
	Location       *string `json:"location"`
	WorkingHours   *string `json:"working_hours"`
	Email          *string `json:"email"`
	ProfileImage   *string `json:"profile_image"`
}

type CustomerProfileUpdateInput struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	DateOfBirth *string `json:"date_of_birth"`
	File        *string `json:"file"`
}

type ProfileService interface {
	Classify(userID uint) (model.UserType, error)
	GetProfile(userID uint) (*ProfileEnvelope, error)
	UpdateProfile(userID uint, input ProfileUpdateInput) (*ProfileEnvelope, error)
	GetBusinessProfile(userID uint) (*BusinessProfileData, error)
	UpdateBusinessProfile(userID uint, input BusinessProfileUpdateInput) (*BusinessProfileData, error)
	GetCustomerProfile(userID uint) (*model.CustomerProfile, error)
	UpdateCustomerProfile(userID uint, input CustomerProfileUpdateInput) (*model.CustomerProfile, error)
	ListBusinessProfiles() ([]BusinessProfileData, error)
	ListCustomerProfiles() ([]model.CustomerProfile, error)
	BuildBusinessProfileData(profile *model.BusinessProfile) (*BusinessProfileData, error)
	Summarize(user *model.User) (*UserSummary, error)
}

type profileService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	orderRepo   repository.OrderRepository
	reviewRepo  repository.ReviewRepository
	db          *gorm.DB
}

func NewProfileService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	orderRepo repository.OrderRepository,
	reviewRepo repository.ReviewRepository,
	db *gorm.DB,
) ProfileService {
	return &profileService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		orderRepo:   orderRepo,
		reviewRepo:  reviewRepo,
		db:          db,
	}
}

// Classify resolves the account type from profile-record presence. No role
// flag is stored anywhere; this runs on every request that needs a role.
func (s *profileService) Classify(userID uint) (model.UserType, error) {
	business, err := s.findBusiness(userID)
	if err != nil {
		return model.TypeUnknown, err
	}
	customer, err := s.findCustomer(userID)
	if err != nil {
		return model.TypeUnknown, err
	}

	switch {
	case business != nil && customer != nil:
		logger.Error("User has both profile types", ErrAmbiguousProfile, map[string]interface{}{
			"user_id": userID,
		})
		return model.TypeUnknown, ErrAmbiguousProfile
	case business != nil:
		return model.TypeBusiness, nil
	case customer != nil:
		return model.TypeCustomer, nil
	default:
		return model.TypeUnknown, nil
	}
}

func (s *profileService) GetProfile(userID uint) (*ProfileEnvelope, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.buildEnvelope(user)
}

func (s *profileService) UpdateProfile(userID uint, input ProfileUpdateInput) (*ProfileEnvelope, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	business, err := s.findBusiness(userID)
	if err != nil {
		return nil, err
	}
	customer, err := s.findCustomer(userID)
	if err != nil {
		return nil, err
	}

	logger.Info("Updating profile", map[string]interface{}{
		"user_id": userID,
	})

	// User half and profile half are applied in one transaction so a
	// failing profile write cannot leave the user half already committed.
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during profile update, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	setString(&user.Username, input.Username)
	setString(&user.Email, input.Email)
	setString(&user.FirstName, input.FirstName)
	setString(&user.LastName, input.LastName)
	if err := tx.Save(user).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if business != nil {
		setString(&business.CompanyName, input.CompanyName)
		setString(&business.CompanyAddress, input.CompanyAddress)
		setString(&business.CompanyWebsite, input.CompanyWebsite)
		setString(&business.Description, input.Description)
		setString(&business.Tel, input.Tel)
		setString(&business.Location, input.Location)
		setString(&business.WorkingHours, input.WorkingHours)
		if err := tx.Save(business).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	} else if customer != nil {
		setString(&customer.FirstName, input.FirstName)
		setString(&customer.LastName, input.LastName)
		setString(&customer.File, input.File)
		if err := tx.Save(customer).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit profile update", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	return s.buildEnvelope(user)
}

func (s *profileService) GetBusinessProfile(userID uint) (*BusinessProfileData, error) {
	profile, err := s.profileRepo.FindBusinessByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessProfileNotFound
		}
		return nil, err
	}
	return s.BuildBusinessProfileData(profile)
}

func (s *profileService) UpdateBusinessProfile(userID uint, input BusinessProfileUpdateInput) (*BusinessProfileData, error) {
	profile, err := s.profileRepo.FindBusinessByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessProfileNotFound
		}
		return nil, err
	}

	logger.Info("Updating business profile", map[string]interface{}{
		"user_id": userID,
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during business profile update, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	setString(&profile.CompanyName, input.CompanyName)
	setString(&profile.CompanyAddress, input.CompanyAddress)
	setString(&profile.CompanyWebsite, input.CompanyWebsite)
	setString(&profile.Description, input.Description)
	setString(&profile.Tel, input.Tel)
	setString(&profile.Location, input.Location)
	setString(&profile.WorkingHours, input.WorkingHours)
	setString(&profile.ProfileImage, input.ProfileImage)
	if err := tx.Save(profile).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if input.Email != nil {
		profile.User.Email = *input.Email
		if err := tx.Save(&profile.User).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit business profile update", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	return s.BuildBusinessProfileData(profile)
}

func (s *profileService) GetCustomerProfile(userID uint) (*model.CustomerProfile, error) {
	profile, err := s.profileRepo.FindCustomerByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *profileService) UpdateCustomerProfile(userID uint, input CustomerProfileUpdateInput) (*model.CustomerProfile, error) {
	profile, err := s.profileRepo.FindCustomerByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerProfileNotFound
		}
		return nil, err
	}

	logger.Info("Updating customer profile", map[string]interface{}{
		"user_id": userID,
	})

	setString(&profile.FirstName, input.FirstName)
	setString(&profile.LastName, input.LastName)
	setString(&profile.File, input.File)
	if input.DateOfBirth != nil {
		parsed, err := time.Parse("2006-01-02", *input.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("invalid date_of_birth: %w", err)
		}
		profile.DateOfBirth = &parsed
	}

	if err := s.profileRepo.UpdateCustomer(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) ListBusinessProfiles() ([]BusinessProfileData, error) {
	profiles, err := s.profileRepo.ListBusiness()
	if err != nil {
		return nil, err
	}

	result := make([]BusinessProfileData, 0, len(profiles))
	for i := range profiles {
		data, err := s.BuildBusinessProfileData(&profiles[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *data)
	}
	return result, nil
}

func (s *profileService) ListCustomerProfiles() ([]model.CustomerProfile, error) {
	return s.profileRepo.ListCustomer()
}

func (s *profileService) BuildBusinessProfileData(profile *model.BusinessProfile) (*BusinessProfileData, error) {
	avg, err := s.reviewRepo.AverageRatingForBusinessUser(profile.UserID)
	if err != nil {
		return nil, err
	}
	pending, err := s.orderRepo.CountInProgressForBusinessUser(profile.UserID)
	if err != nil {
		return nil, err
	}

	user := profile.User
	if user.ID == 0 {
		loaded, err := s.userRepo.FindByID(profile.UserID)
		if err != nil {
			return nil, err
		}
		user = *loaded
	}

	return &BusinessProfileData{
		ID:             profile.ID,
		CompanyName:    profile.CompanyName,
		CompanyAddress: profile.CompanyAddress,
		CompanyWebsite: profile.CompanyWebsite,
		Description:    profile.Description,
		Tel:            profile.Tel,
		Location:       profile.Location,
		WorkingHours:   profile.WorkingHours,
		CreatedAt:      profile.CreatedAt,
		User: UserSummary{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			CreatedAt: user.CreatedAt,
			File:      profile.ProfileImage,
			Tel:       profile.Tel,
			Type:      model.TypeBusiness,
		},
		AvgRating:     RatingDisplay(avg),
		PendingOrders: pending,
		Email:         user.Email,
		Username:      user.Username,
		ProfileImage:  profile.ProfileImage,
	}, nil
}

// Summarize assembles the compact user payload, pulling image and phone
// number from whichever profile the user has.
func (s *profileService) Summarize(user *model.User) (*UserSummary, error) {
	business, err := s.findBusiness(user.ID)
	if err != nil {
		return nil, err
	}
	customer, err := s.findCustomer(user.ID)
	if err != nil {
		return nil, err
	}

	summary := &UserSummary{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
		Type:      model.TypeUnknown,
	}
	if business != nil {
		summary.File = business.ProfileImage
		summary.Tel = business.Tel
		summary.Type = model.TypeBusiness
	} else if customer != nil {
		summary.File = customer.File
		summary.CreatedAt = customer.CreatedAt
		summary.Type = model.TypeCustomer
	}
	return summary, nil
}

func (s *profileService) buildEnvelope(user *model.User) (*ProfileEnvelope, error) {
	business, err := s.findBusiness(user.ID)
	if err != nil {
		return nil, err
	}
	customer, err := s.findCustomer(user.ID)
	if err != nil {
		return nil, err
	}

	envelope := &ProfileEnvelope{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		CreatedAt:   user.CreatedAt,
		Type:        model.TypeUnknown,
		ProfileData: map[string]interface{}{},
	}

	switch {
	case business != nil:
		data, err := s.BuildBusinessProfileData(business)
		if err != nil {
			return nil, err
		}
		envelope.Type = model.TypeBusiness
		envelope.ProfileData = data
		envelope.File = business.ProfileImage
		envelope.CreatedAt = business.CreatedAt
		envelope.Tel = &business.Tel
		envelope.Location = &business.Location
		envelope.Description = &business.Description
		envelope.WorkingHours = &business.WorkingHours
	case customer != nil:
		envelope.Type = model.TypeCustomer
		envelope.ProfileData = customer
		envelope.File = customer.File
		envelope.CreatedAt = customer.CreatedAt
		envelope.FirstName = customer.FirstName
		envelope.LastName = customer.LastName
	}

	return envelope, nil
}

func (s *profileService) findBusiness(userID uint) (*model.BusinessProfile, error) {
	profile, err := s.profileRepo.FindBusinessByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

func (s *profileService) findCustomer(userID uint) (*model.CustomerProfile, error) {
	profile, err := s.profileRepo.FindCustomerByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// RatingDisplay renders an average rating as a one-decimal float, or "-"
// when there are no reviews. The platform stats endpoint uses a 0.0
// fallback instead; both defaults are intentional.
func RatingDisplay(avg *float64) interface{} {
	if avg == nil {
		return "-"
	}
	return RoundRating(*avg)
}

func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
