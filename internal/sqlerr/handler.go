package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/webbrayns-backend/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var uniqueKeyPattern = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// ErrCode reports the Code of the first *Error in err's chain, Other if none.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}
	return Other
}

// ConvertPgError normalizes a raw pgconn.PgError.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// userMessage phrases a constraint violation for the web client.
func userMessage(sqlErr *Error) string {
	entity := entityName(sqlErr.TableName, sqlErr.ColumnName)
	field := humanize(sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entity)

	case UniqueViolation:
		if column := uniqueColumn(sqlErr.ConstraintName); column != "" {
			return fmt.Sprintf("A %s with this %s already exists", entity, humanize(column))
		}
		return fmt.Sprintf("This %s already exists", entity)

	case NotNullViolation:
		if field == "" {
			field = "field"
		}
		return fmt.Sprintf("The %s is required", field)

	case CheckViolation:
		if field != "" {
			return fmt.Sprintf("Invalid %s", field)
		}
		if sqlErr.ConstraintName != "" {
			return fmt.Sprintf("Invalid %s: %s failed", entity, sqlErr.ConstraintName)
		}
		return fmt.Sprintf("Invalid %s", entity)

	default:
		return "An error occurred while processing your request"
	}
}

// entityName prefers the "<entity>_id" column of a foreign key, then the
// singular table name.
//
//	"circuit_id"       -> "Circuit"
//	"connectome_edges" -> "Connectome Edge"
func entityName(tableName, columnName string) string {
	if column := strings.ToLower(columnName); strings.HasSuffix(column, "_id") {
		return humanize(strings.TrimSuffix(column, "_id"))
	}
	if tableName != "" {
		return humanize(strings.TrimSuffix(tableName, "s"))
	}
	return "record"
}

// humanize turns snake_case into Title Case.
func humanize(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// uniqueColumn guesses the column behind a unique constraint named either
// "unique_<table>_<column>" or "<table>_<column>_key".
func uniqueColumn(constraintName string) string {
	if strings.HasPrefix(constraintName, "unique_") {
		if parts := strings.Split(constraintName, "_"); len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}
	if matches := uniqueKeyPattern.FindStringSubmatch(constraintName); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// HandleError converts a database error into an RPC error.
//
//   - *errs.RPCError: returned unchanged
//   - constraint violations and invalid values: code 1 with a readable message
//   - no rows: code 1, "<entity> not found"
//   - anything else: code 666
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	var rpcErr *errs.RPCError
	if errors.As(err, &rpcErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)

		switch sqlErr.Code {
		case UniqueViolation, ForeignKeyViolation, NotNullViolation, CheckViolation:
			return errs.BadInput("%s", userMessage(sqlErr)).WithCause(sqlErr)
		case InvalidText, NumericOutOfRange:
			return errs.BadInput("Invalid value: %s", sqlErr.Message).WithCause(sqlErr)
		default:
			return errs.Unexpected(sqlErr)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		// Repositories tag lookups as "table:<name>:" to name the entity.
		if _, rest, ok := strings.Cut(err.Error(), "table:"); ok {
			table, _, _ := strings.Cut(rest, ":")
			return errs.BadInput("%s not found", entityName(table, "")).WithCause(err)
		}
		return errs.BadInput("Resource not found").WithCause(err)
	}

	return errs.Unexpected(err)
}
