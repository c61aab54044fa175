package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/internhub/intern-management-api/internal/constants"
	"github.com/internhub/intern-management-api/internal/lifecycle"
	"github.com/internhub/intern-management-api/internal/models"
	"github.com/internhub/intern-management-api/internal/policy"
	"gorm.io/datatypes"
)

// Task write keys. Read keys differ; see dto.TaskDTO.
const (
	fieldTitle            = "title"
	fieldDescription      = "description"
	fieldAssignedToUserID = "assigned_to_user_id"
	fieldDueDate          = "due_date"
	fieldPriority         = "priority"
)

const (
	msgInvalidIntern   = "Invalid intern user id"
	msgInvalidPriority = "Invalid priority value"
	msgInvalidInteger  = "A valid integer is required."
	msgInvalidBoolean  = "Must be a valid boolean."
	msgInvalidDate     = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgInvalidDatetime = "Datetime has wrong format. Use RFC 3339."
	msgTitleTooLong    = "Ensure this field has no more than 200 characters."
	maxTitleLength     = 200
)

// internLookup reports whether an account id belongs to an intern profile.
type internLookup func(userID uint64) (bool, error)

// applyTaskFields copies raw write payload values onto task. Keys outside mask
// are dropped. Every bad value is collected into verr.
func applyTaskFields(task *models.Task, raw map[string]interface{}, mask policy.FieldMask, isIntern internLookup, verr *ValidationError) error {
	for key, value := range raw {
		if !mask.Allows(key) {
			continue
		}

		switch key {
		case fieldTitle:
			title, ok := value.(string)
			title = strings.TrimSpace(title)
			switch {
			case !ok || title == "":
				verr.add(key, msgBlank)
			case utf8.RuneCountInString(title) > maxTitleLength:
				verr.add(key, msgTitleTooLong)
			default:
				task.Title = title
			}

		case fieldDescription:
			switch v := value.(type) {
			case nil:
				task.Description = ""
			case string:
				task.Description = v
			default:
				verr.add(key, "Not a valid string.")
			}

		case fieldAssignedToUserID:
			id, ok := coerceInt(value)
			if !ok || id <= 0 {
				verr.add(key, msgInvalidIntern)
				continue
			}
			found, err := isIntern(uint64(id))
			if err != nil {
				return err
			}
			if !found {
				verr.add(key, msgInvalidIntern)
				continue
			}
			if task.AssignedToID != uint64(id) {
				task.AssignedTo = models.InternProfile{}
			}
			task.AssignedToID = uint64(id)

		case fieldDueDate:
			s, _ := value.(string)
			due, err := time.Parse(constants.DueDateLayout, strings.TrimSpace(s))
			if err != nil {
				verr.add(key, msgInvalidDate)
				continue
			}
			task.DueDate = datatypes.Date(due)

		case fieldPriority:
			s, _ := value.(string)
			priority, ok := models.ParsePriority(s)
			if !ok {
				verr.add(key, msgInvalidPriority)
				continue
			}
			task.Priority = priority

		case policy.FieldStatus:
			s, _ := value.(string)
			status, ok := models.ParseStatus(s)
			if !ok {
				verr.add(key, fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(value)))
				continue
			}
			task.Status = status

		case policy.FieldProgress:
			progress, ok := coerceInt(value)
			if !ok {
				verr.add(key, msgInvalidInteger)
				continue
			}
			task.Progress = lifecycle.ClampProgress(progress)

		case policy.FieldIsStarted:
			started, ok := value.(bool)
			if !ok {
				verr.add(key, msgInvalidBoolean)
				continue
			}
			task.IsStarted = started

		case policy.FieldStartedAt:
			ts, ok := parseNullableTime(value)
			if !ok {
				verr.add(key, msgInvalidDatetime)
				continue
			}
			task.StartedAt = ts

		case policy.FieldCompletedAt:
			ts, ok := parseNullableTime(value)
			if !ok {
				verr.add(key, msgInvalidDatetime)
				continue
			}
			task.CompletedAt = ts
		}
	}
	return nil
}

// coerceInt accepts JSON numbers and base-10 integer strings. Fractional
// numbers are truncated toward zero.
func coerceInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Trunc(v)))), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func parseNullableTime(value interface{}) (*time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, true
		}
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(v))
		if err != nil {
			return nil, false
		}
		return &t, true
	default:
		return nil, false
	}
}
