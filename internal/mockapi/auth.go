package mockapi

import (
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/desertthunder/streamz/internal/models"
)

const (
	msgRequired    = "This field is required."
	msgBlank       = "This field may not be blank."
	minPasswordLen = 8
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeBody(r, &creds); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	errs := fieldErrors{}
	if creds.Username == "" {
		errs.add("username", msgRequired)
	}
	if creds.Password == "" {
		errs.add("password", msgRequired)
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.findAccountLocked(creds.Username)
	if acct == nil || !acct.checkPassword(creds.Password) {
		s.metrics.RecordLogin(false)
		writeError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	s.metrics.RecordLogin(true)
	writeJSON(w, http.StatusOK, models.AuthResponse{
		Token: s.issueTokenLocked(acct.user.ID),
		User:  acct.user,
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeBody(r, &body); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	str := func(key string) string {
		v, _ := body[key].(string)
		return strings.TrimSpace(v)
	}

	errs := fieldErrors{}
	for _, key := range []string{"username", "email", "password", "password2"} {
		if _, ok := body[key]; !ok {
			errs.add(key, msgRequired)
		} else if str(key) == "" {
			errs.add(key, msgBlank)
		}
	}

	if email := str("email"); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			errs.add("email", "Enter a valid email address.")
		}
	}
	if pw := str("password"); pw != "" && len(pw) < minPasswordLen {
		errs.add("password", "This password is too short. It must contain at least 8 characters.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var plan *models.Plan
	if raw, ok := body["plan"]; !ok || raw == nil {
		errs.add("plan", msgRequired)
	} else if id, ok := intField(raw); !ok {
		errs.add("plan", "Incorrect type. Expected pk value.")
	} else if plan = s.planLocked(id); plan == nil {
		errs.add("plan", invalidPK(raw))
	}

	if name := str("username"); name != "" && s.findAccountLocked(name) != nil {
		errs.add("username", "A user with that username already exists.")
	}

	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	if str("password") != str("password2") {
		writeJSON(w, http.StatusBadRequest, fieldErrors{"password": {"Password fields didn't match."}})
		return
	}

	hash, err := hashPassword(str("password"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, fieldErrors{"password": {"This password is too long."}})
		return
	}

	s.nextUser++
	acct := &account{
		passwordHash: hash,
		user: models.User{
			ID:                 s.nextUser,
			Username:           str("username"),
			Email:              str("email"),
			FirstName:          str("first_name"),
			LastName:           str("last_name"),
			Plan:               models.PlanRef{ID: plan.ID},
			SubscriptionActive: true,
		},
	}
	s.accounts[acct.user.ID] = acct
	s.logger.Info("registered user", "username", acct.user.Username, "plan", plan.Name)

	writeJSON(w, http.StatusCreated, models.AuthResponse{
		Token: s.issueTokenLocked(acct.user.ID),
		User:  acct.user,
	})
}

func (s *Server) listPlans(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	plans := append([]models.Plan(nil), s.plans...)
	s.mu.Unlock()
	paginate(w, r, plans)
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	id, _ := userFromContext(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.accounts[id].user)
}

// updateProfile applies a partial update. Read-only fields are ignored.
func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := userFromContext(r.Context())

	var body map[string]any
	if err := decodeBody(r, &body); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.accounts[id].user
	errs := fieldErrors{}

	for _, key := range []string{"username", "email", "first_name", "last_name"} {
		raw, ok := body[key]
		if !ok {
			continue
		}
		v, isString := raw.(string)
		if !isString {
			errs.add(key, "Not a valid string.")
			continue
		}
		v = strings.TrimSpace(v)

		switch key {
		case "username":
			if v == "" {
				errs.add(key, msgBlank)
			} else if other := s.findAccountLocked(v); other != nil && other.user.ID != id {
				errs.add(key, "A user with that username already exists.")
			} else {
				updated.Username = v
			}
		case "email":
			if _, err := mail.ParseAddress(v); v != "" && err != nil {
				errs.add(key, "Enter a valid email address.")
			} else {
				updated.Email = v
			}
		case "first_name":
			updated.FirstName = v
		case "last_name":
			updated.LastName = v
		}
	}

	if raw, ok := body["plan"]; ok {
		if raw == nil {
			updated.Plan = models.PlanRef{}
		} else if pid, ok := intField(raw); !ok {
			errs.add("plan", "Incorrect type. Expected pk value.")
		} else if plan := s.planLocked(pid); plan == nil {
			errs.add("plan", invalidPK(raw))
		} else {
			updated.Plan = models.PlanRef{ID: plan.ID}
		}
	}

	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	s.accounts[id].user = updated
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) findAccountLocked(username string) *account {
	for _, acct := range s.accounts {
		if strings.EqualFold(acct.user.Username, username) {
			return acct
		}
	}
	return nil
}

func (s *Server) planLocked(id int) *models.Plan {
	for i := range s.plans {
		if s.plans[i].ID == id {
			return &s.plans[i]
		}
	}
	return nil
}

func invalidPK(raw any) string {
	return fmt.Sprintf("Invalid pk \"%v\" - object does not exist.", raw)
}
