package gateway

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/mcdev12/tileduel/internal/models"
)

// Wire parameter patterns. The routing layer in front of this service is
// trusted for transport concerns only; every parameter is still validated
// here before it reaches the coordinator.
var (
	namePattern = regexp.MustCompile(`^\w{6,10}$`)
	rowPattern  = regexp.MustCompile(`^[1-5]$`)
)

const (
	minPassLength = 6
	maxPassLength = 11
	minGameID     = 1000
)

type joinRequest struct {
	Name string
	Pass string
	Type models.GameType
	Size int
}

type leaveRequest struct {
	Name   string
	Key    string
	GameID int64
}

type notifyRequest struct {
	Name   string
	Key    string
	GameID int64
	Row    int
	Col    int
}

type updateRequest struct {
	Name   string
	Key    string
	GameID int64
}

type registerRequest struct {
	Name string
	Pass string
}

type questionsRequest struct {
	Type models.GameType
	Size int
}

func parseName(q url.Values) (string, error) {
	name := q.Get("name")
	if !namePattern.MatchString(name) {
		return "", fmt.Errorf("invalid parameter name")
	}
	return name, nil
}

func parsePass(q url.Values) (string, error) {
	pass := q.Get("pass")
	if len(pass) < minPassLength || len(pass) > maxPassLength {
		return "", fmt.Errorf("invalid parameter pass")
	}
	return pass, nil
}

func parseKey(q url.Values) (string, error) {
	key := q.Get("key")
	if key == "" {
		return "", fmt.Errorf("invalid parameter key")
	}
	return key, nil
}

func parseGameType(q url.Values) (models.GameType, error) {
	t := models.GameType(q.Get("type"))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid parameter type")
	}
	return t, nil
}

func parseSize(q url.Values) (int, error) {
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size < models.MinBoardSize || size > models.MaxBoardSize {
		return 0, fmt.Errorf("invalid parameter size")
	}
	return size, nil
}

func parseGameID(q url.Values) (int64, error) {
	id, err := strconv.ParseInt(q.Get("game"), 10, 64)
	if err != nil || id < minGameID {
		return 0, fmt.Errorf("invalid parameter game")
	}
	return id, nil
}

func parseCoord(q url.Values, param string) (int, error) {
	raw := q.Get(param)
	if !rowPattern.MatchString(raw) {
		return 0, fmt.Errorf("invalid parameter %s", param)
	}
	v, _ := strconv.Atoi(raw)
	return v, nil
}

func parseJoinRequest(q url.Values) (joinRequest, error) {
	var req joinRequest
	var err error
	if req.Name, err = parseName(q); err != nil {
		return req, err
	}
	if req.Pass, err = parsePass(q); err != nil {
		return req, err
	}
	if req.Type, err = parseGameType(q); err != nil {
		return req, err
	}
	if req.Size, err = parseSize(q); err != nil {
		return req, err
	}
	return req, nil
}

func parseLeaveRequest(q url.Values) (leaveRequest, error) {
	var req leaveRequest
	var err error
	if req.Name, err = parseName(q); err != nil {
		return req, err
	}
	if req.Key, err = parseKey(q); err != nil {
		return req, err
	}
	if req.GameID, err = parseGameID(q); err != nil {
		return req, err
	}
	return req, nil
}

func parseNotifyRequest(q url.Values) (notifyRequest, error) {
	var req notifyRequest
	var err error
	if req.Name, err = parseName(q); err != nil {
		return req, err
	}
	if req.Key, err = parseKey(q); err != nil {
		return req, err
	}
	if req.GameID, err = parseGameID(q); err != nil {
		return req, err
	}
	if req.Row, err = parseCoord(q, "row"); err != nil {
		return req, err
	}
	if req.Col, err = parseCoord(q, "col"); err != nil {
		return req, err
	}
	return req, nil
}

func parseUpdateRequest(q url.Values) (updateRequest, error) {
	var req updateRequest
	var err error
	if req.Name, err = parseName(q); err != nil {
		return req, err
	}
	if req.Key, err = parseKey(q); err != nil {
		return req, err
	}
	if req.GameID, err = parseGameID(q); err != nil {
		return req, err
	}
	return req, nil
}

func parseRegisterRequest(q url.Values) (registerRequest, error) {
	var req registerRequest
	var err error
	if req.Name, err = parseName(q); err != nil {
		return req, err
	}
	if req.Pass, err = parsePass(q); err != nil {
		return req, err
	}
	return req, nil
}

func parseQuestionsRequest(q url.Values) (questionsRequest, error) {
	var req questionsRequest
	var err error
	if req.Type, err = parseGameType(q); err != nil {
		return req, err
	}
	if req.Size, err = parseSize(q); err != nil {
		return req, err
	}
	return req, nil
}
