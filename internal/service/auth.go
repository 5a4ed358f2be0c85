package service

import "sort"

// AuthService handles the access allow-list
type AuthService struct {
	allowed map[int64]struct{}
}

// NewAuthService creates a new auth service
func NewAuthService(allowedUsers []int64) *AuthService {
	allowed := make(map[int64]struct{}, len(allowedUsers))
	for _, id := range allowedUsers {
		allowed[id] = struct{}{}
	}
	return &AuthService{allowed: allowed}
}

// IsAuthorized checks if user is on the allow-list
func (s *AuthService) IsAuthorized(userID int64) bool {
	_, ok := s.allowed[userID]
	return ok
}

// Filter keeps only the authorized ids, preserving order
func (s *AuthService) Filter(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if s.IsAuthorized(id) {
			out = append(out, id)
		}
	}
	return out
}

// AllowedUsers returns the allow-list in ascending order
func (s *AuthService) AllowedUsers() []int64 {
	out := make([]int64, 0, len(s.allowed))
	for id := range s.allowed {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
