package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/Kapsk2801/Lost-Found/internal/database"
	"github.com/Kapsk2801/Lost-Found/internal/lferror"
	"github.com/Kapsk2801/Lost-Found/internal/model"
	argon2 "github.com/mdouchement/simple-argon2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	errEmailTaken         = lferror.NewWithKind(lferror.KindInvalidState, http.StatusConflict, "email-taken", "This email is already registered.")
	errInvalidCredentials = lferror.NewWithKind(lferror.KindUnauthorized, http.StatusUnauthorized, "invalid-auth", "Invalid email or password.")
	errWrongPassword      = lferror.NewWithKind(lferror.KindUnauthorized, http.StatusUnauthorized, "invalid-auth", "The current password you entered is incorrect. Please try again.")
)

type (
	// A UserService manages accounts and profiles.
	UserService struct {
		db      database.Client
		isAdmin func(email string) bool
		logger  logrus.FieldLogger
	}

	// ProfileParams are the editable profile fields.
	ProfileParams struct {
		FirstName  string `json:"first_name" validate:"max=60"`
		LastName   string `json:"last_name"  validate:"max=60"`
		Phone      string `json:"phone"      validate:"max=30"`
		Department string `json:"department" validate:"max=120"`
		RollNo     string `json:"roll_no"    validate:"max=30"`
		Gender     string `json:"gender"     validate:"omitempty,oneof=male female other"`
	}

	// RegisterParams are used to register a user.
	RegisterParams struct {
		ProfileParams
		Email    string `json:"email"    validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=128"`
	}

	// LoginParams are used to login a user.
	LoginParams struct {
		Email    string `json:"email"    validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	// UpdatePasswordParams are used to update user's password.
	UpdatePasswordParams struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
	}
)

// NewUser returns a new UserService.
// isAdmin tells whether a new account must be granted the admin role, it may be nil.
func NewUser(db database.Client, isAdmin func(email string) bool, logger logrus.FieldLogger) *UserService {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &UserService{
		db:      db,
		isAdmin: isAdmin,
		logger:  logger,
	}
}

// Register creates a new account.
func (s *UserService) Register(params RegisterParams) (*model.User, error) {
	params.Email = normalizeEmail(params.Email)
	if err := Validate(params); err != nil {
		return nil, err
	}

	// Check if the email is free to use.
	u, err := s.db.FindUserByMail(params.Email)
	if err != nil && !s.db.IsNotFound(err) {
		return nil, lferror.StoreRead(err)
	}
	if u != nil {
		return nil, errEmailTaken
	}

	user := model.NewUser()
	user.Email = params.Email
	if s.isAdmin(user.Email) {
		user.Role = model.RoleAdmin
	}
	applyProfile(user, params.ProfileParams)

	if err = setPassword(user, params.Password); err != nil {
		return nil, err
	}

	if err := s.db.Save(user); err != nil {
		if s.db.IsAlreadyExists(err) {
			return nil, errEmailTaken
		}
		return nil, lferror.StoreWrite(err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")
	return user, nil
}

// Login checks the credentials and returns the matching user.
func (s *UserService) Login(params LoginParams) (*model.User, error) {
	if err := Validate(params); err != nil {
		return nil, err
	}

	user, err := s.db.FindUserByMail(normalizeEmail(params.Email))
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, lferror.StoreRead(err)
	}
	if user.Password == "" {
		// Imported account without credentials.
		return nil, errInvalidCredentials
	}

	if err = argon2.CompareHashAndPasswordString(user.Password, params.Password); err != nil {
		if err == argon2.ErrMismatchedHashAndPassword {
			return nil, errInvalidCredentials
		}
		return nil, errors.Wrap(err, "could not validate password")
	}
	return user, nil
}

// UpdateProfile updates the profile of the given user.
// Empty params are ignored, works like strong_parameter.
func (s *UserService) UpdateProfile(user *model.User, params ProfileParams) (*model.User, error) {
	if err := Validate(params); err != nil {
		return nil, err
	}

	applyProfile(user, params)
	if err := s.db.Save(user); err != nil {
		return nil, lferror.StoreWrite(err)
	}
	return user, nil
}

// UpdatePassword changes the password of the given user.
// Access tokens issued before the change are revoked.
func (s *UserService) UpdatePassword(user *model.User, params UpdatePasswordParams) (*model.User, error) {
	if err := Validate(params); err != nil {
		return nil, err
	}

	if err := argon2.CompareHashAndPasswordString(user.Password, params.CurrentPassword); err != nil {
		if err == argon2.ErrMismatchedHashAndPassword {
			return nil, errWrongPassword
		}
		return nil, errors.Wrap(err, "could not validate password")
	}

	if err := setPassword(user, params.NewPassword); err != nil {
		return nil, err
	}
	if err := s.db.Save(user); err != nil {
		return nil, lferror.StoreWrite(err)
	}
	return user, nil
}

// Grant gives the admin role to the account of the given email.
func (s *UserService) Grant(email string) (*model.User, error) {
	user, err := s.db.FindUserByMail(normalizeEmail(email))
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, lferror.NewWithKind(lferror.KindNotFound, http.StatusNotFound, "user-not-found", "No such user.")
		}
		return nil, lferror.StoreRead(err)
	}

	user.Role = model.RoleAdmin
	if err = s.db.Save(user); err != nil {
		return nil, lferror.StoreWrite(err)
	}
	s.logger.WithField("user_id", user.ID).Info("admin role granted")
	return user, nil
}

func setPassword(user *model.User, password string) (err error) {
	user.Password, err = argon2.GenerateFromPasswordString(password, argon2.Default)
	if err != nil {
		return errors.Wrap(err, "could not store user password safe")
	}
	user.PasswordUpdatedAt = time.Now().Unix()
	return nil
}

func applyProfile(u *model.User, params ProfileParams) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}

	set(&u.FirstName, params.FirstName)
	set(&u.LastName, params.LastName)
	set(&u.Phone, params.Phone)
	set(&u.Department, params.Department)
	set(&u.RollNo, params.RollNo)
	set(&u.Gender, params.Gender)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
