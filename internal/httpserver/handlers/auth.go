package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/serene/internal/auth"
	"github.com/MrSnakeDoc/serene/internal/httpserver/deps"
)

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type confirmResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// SignUp creates an account and returns {token,user} with 201.
func SignUp(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signUpRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}

		res, err := d.Auth.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// SignIn returns {token,user}.
func SignIn(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signInRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}

		res, err := d.Auth.SignIn(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// SignOut revokes the caller's token.
func SignOut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		if err := d.Auth.SignOut(r.Context(), sess); err != nil {
			writeError(d, w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// PasswordReset mails a reset link and answers 202.
func PasswordReset(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}

		if err := d.Auth.SendPasswordReset(r.Context(), req.Email); err != nil {
			writeError(d, w, r, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// ConfirmPasswordReset sets a new password from a reset token.
func ConfirmPasswordReset(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req confirmResetRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(d, w, r, err)
			return
		}

		if err := d.Auth.ConfirmPasswordReset(r.Context(), req.Token, req.Password); err != nil {
			writeError(d, w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Me returns the caller's profile.
func Me(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		user, err := d.Auth.Profile(r.Context(), sess.UserID)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// UpdateMe applies {displayName?,photoURL?} to the caller's profile.
func UpdateMe(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := session(r)
		if err != nil {
			writeError(d, w, r, err)
			return
		}

		var upd auth.ProfileUpdate
		if err := decodeJSON(r, &upd); err != nil {
			writeError(d, w, r, err)
			return
		}

		user, err := d.Auth.UpdateProfile(r.Context(), sess.UserID, upd)
		if err != nil {
			writeError(d, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
