package server

import (
	"slices"

	"github.com/labstack/echo/v4"
)

const (
	sessionName       = "mergetree"
	historySessionKey = "history"

	// keeps the signed cookie well under the 4KB browser limit
	maxSessionHistory = 16
)

// sessionHistory returns the IDs of the submissions made by this client, oldest first.
func (s *Server) sessionHistory(c echo.Context) []string {
	sess, err := s.cookies.Get(c.Request(), sessionName)
	if err != nil {
		// eg, cookie signed with a previous random key
		s.log.Debug("ignoring invalid session cookie", "err", err)
		return nil
	}
	ids, ok := sess.Values[historySessionKey].([]string)
	if !ok {
		return nil
	}
	return ids
}

// supersededBy returns the client's most recent submission when id is an older submission made by the same client, or an empty string.
//
// IDs the client did not create, such as a shared link, are never superseded.
func (s *Server) supersededBy(c echo.Context, id string) string {
	ids := s.sessionHistory(c)
	if len(ids) == 0 {
		return ""
	}
	latest := ids[len(ids)-1]
	if latest == id || !slices.Contains(ids, id) {
		return ""
	}
	return latest
}

// recordSubmission appends id to the client's history, making it the most recent submission.
func (s *Server) recordSubmission(c echo.Context, id string) error {
	// a fresh session is returned alongside any decode error, so it is safe to overwrite
	sess, _ := s.cookies.Get(c.Request(), sessionName)
	ids, _ := sess.Values[historySessionKey].([]string)
	ids = append(ids, id)
	if len(ids) > maxSessionHistory {
		ids = ids[len(ids)-maxSessionHistory:]
	}
	sess.Values[historySessionKey] = ids
	return sess.Save(c.Request(), c.Response())
}
