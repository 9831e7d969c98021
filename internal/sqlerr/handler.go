package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Naenyn/FeedbackPortlet/internal/errs"

	"github.com/jackc/pgx/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var uniqueKeyColumn = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// generateErrorCode builds a machine code such as FEEDBACK_ITEM_REQUIRED.
func generateErrorCode(tableName string, code Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch code {
	case ForeignKeyViolation, NotFound:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)
	case UniqueViolation:
		return fmt.Sprintf("A %s with this identifier already exists", entityName)
	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)
	case CheckViolation:
		if fieldName := humanizeText(sqlErr.ColumnName); fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"
	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName prefers a *_id column, then the singular table name.
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		return humanizeText(strings.TrimSuffix(strings.ToLower(columnName), "_id"))
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText turns "feedback_items" into "Feedback Items".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// extractColumnForUniqueViolation reads the column out of constraint names
// shaped like unique_<table>_<column> or <table>_<column>_key.
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	if matches := uniqueKeyColumn.FindStringSubmatch(constraintName); len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// HandleError converts a store or driver error into an *errs.HTTPError.
//
//   - *errs.HTTPError is returned unchanged
//   - constraint violations become 400 with a readable message
//   - missing rows become 404
//   - connection failures become 503
//   - anything else becomes a bare 500
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return handleSQLError(sqlErr)
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return errs.NewNotFoundError("Feedback item not found", true, nil)
	case ErrCode(err) == ConnectionFailure:
		return errs.NewServiceUnavailableError("Feedback store is unavailable")
	}

	return errs.NewInternalServerError()
}

func handleSQLError(sqlErr *Error) error {
	errorCode := generateErrorCode(sqlErr.TableName, sqlErr.Code)
	userMessage := formatUserFriendlyMessage(sqlErr)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return errs.NewBadRequestError(userMessage, false, &errorCode, nil)
	case UniqueViolation:
		if columnName := extractColumnForUniqueViolation(sqlErr.ConstraintName); columnName != "" {
			userMessage = strings.ReplaceAll(userMessage, "identifier", humanizeText(columnName))
		}
		return errs.NewBadRequestError(userMessage, true, &errorCode, nil)
	case NotNullViolation:
		fieldErrors := []errs.FieldError{{
			Field: strings.ToLower(sqlErr.ColumnName),
			Error: "is required",
		}}
		return errs.NewBadRequestError(userMessage, true, &errorCode, fieldErrors)
	case CheckViolation:
		return errs.NewBadRequestError(userMessage, true, &errorCode, nil)
	case ConnectionFailure:
		return errs.NewServiceUnavailableError("Feedback store is unavailable")
	default:
		return errs.NewInternalServerError()
	}
}
