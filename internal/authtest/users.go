package authtest

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is an account the fake API accepts at /auth/login.
type User struct {
	ID           string
	Email        string
	Role         string
	PasswordHash []byte
}

func (u User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) == nil
}

// AddUser registers an account and returns it.
func (s *Server) AddUser(email, password, role string) User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("authtest: hash password: %v", err))
	}

	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = u
	return u
}

func (s *Server) user(email string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	return u, ok
}
