package adminapi

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/internal/webserver"
)

// DBMSTableInfo represents table metadata
type DBMSTableInfo struct {
	Name     string `json:"name"`
	RowCount int64  `json:"row_count"`
}

// DBMSColumnInfo represents column metadata
type DBMSColumnInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Nullable     bool   `json:"nullable"`
	PrimaryKey   bool   `json:"primary_key"`
	DefaultValue string `json:"default_value,omitempty"`
}

// DBMSQueryRequest represents a read-only SQL query request
type DBMSQueryRequest struct {
	SQL string `json:"sql" validate:"required"`
}

// DBMSQueryResult represents query execution result
type DBMSQueryResult struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
	Error   string                   `json:"error,omitempty"`
}

// DBMSServerInfo represents database server information
type DBMSServerInfo struct {
	DatabaseType string `json:"database_type"`
	ServerTime   string `json:"server_time"`
	TableCount   int    `json:"table_count"`
}

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func isValidTableName(name string) bool {
	return validTableName.MatchString(name)
}

func quoteIdentifier(name, dbType string) string {
	if dbType == "postgres" {
		return `"` + name + `"`
	}
	return "`" + name + "`"
}

// registerDbmsRoutes registers the database inspection endpoints
func registerDbmsRoutes() {
	webserver.ApiGET("/dbms/tables", dbmsListTables)
	webserver.ApiGET("/dbms/tables/:name", dbmsGetTableData)
	webserver.ApiGET("/dbms/tables/:name/schema", dbmsGetTableSchema)
	webserver.ApiPOST("/dbms/query", dbmsExecuteQuery)
	webserver.ApiGET("/dbms/serverinfo", dbmsGetServerInfo)
}

func dbmsTableNames(c echo.Context) ([]string, string, error) {
	db := GetDB(c)
	dbType := db.Dialector.Name()

	var tableNames []string
	switch dbType {
	case "postgres":
		err := db.Raw(`
			SELECT table_name
			FROM information_schema.tables
			WHERE table_schema = 'public'
			ORDER BY table_name
		`).Scan(&tableNames).Error
		return tableNames, dbType, err
	case "sqlite":
		err := db.Raw(`
			SELECT name
			FROM sqlite_master
			WHERE type='table' AND name NOT LIKE 'sqlite_%'
			ORDER BY name
		`).Scan(&tableNames).Error
		return tableNames, dbType, err
	default:
		return nil, dbType, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// dbmsListTables returns all tables with row counts
func dbmsListTables(c echo.Context) error {
	db := GetDB(c)
	tableNames, dbType, err := dbmsTableNames(c)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", err.Error(), nil)
	}

	tables := make([]DBMSTableInfo, 0, len(tableNames))
	for _, name := range tableNames {
		var count int64
		db.Raw(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdentifier(name, dbType))).Scan(&count)
		tables = append(tables, DBMSTableInfo{Name: name, RowCount: count})
	}
	return ok(c, tables)
}

// dbmsGetTableSchema returns the columns of a table
func dbmsGetTableSchema(c echo.Context) error {
	db := GetDB(c)
	tableName := c.Param("name")
	if !isValidTableName(tableName) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid table name", nil)
	}

	var columns []DBMSColumnInfo
	dbType := db.Dialector.Name()

	switch dbType {
	case "postgres":
		rows, err := db.Raw(`
			SELECT
				c.column_name,
				c.data_type,
				c.is_nullable = 'YES' AS nullable,
				COALESCE(c.column_default, '') AS default_value
			FROM information_schema.columns c
			WHERE c.table_name = ?
			ORDER BY c.ordinal_position
		`, tableName).Rows()
		if err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", err.Error(), nil)
		}
		defer rows.Close()
		for rows.Next() {
			var col DBMSColumnInfo
			_ = rows.Scan(&col.Name, &col.Type, &col.Nullable, &col.DefaultValue)
			columns = append(columns, col)
		}
	case "sqlite":
		rows, err := db.Raw(fmt.Sprintf("PRAGMA table_info(%s)", quoteIdentifier(tableName, dbType))).Rows()
		if err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", err.Error(), nil)
		}
		defer rows.Close()
		for rows.Next() {
			var cid int
			var name, colType string
			var notNull, pk int
			var dfltValue interface{}
			_ = rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk)
			col := DBMSColumnInfo{
				Name:       name,
				Type:       colType,
				Nullable:   notNull == 0,
				PrimaryKey: pk == 1,
			}
			if dfltValue != nil {
				col.DefaultValue = fmt.Sprintf("%v", dfltValue)
			}
			columns = append(columns, col)
		}
	}

	return ok(c, columns)
}

// dbmsGetTableData returns paginated rows of a table
func dbmsGetTableData(c echo.Context) error {
	db := GetDB(c)
	tableName := c.Param("name")
	if !isValidTableName(tableName) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid table name", nil)
	}

	page, pageSize := parsePagination(c)
	offset := (page - 1) * pageSize
	dbType := db.Dialector.Name()

	var total int64
	db.Raw(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdentifier(tableName, dbType))).Scan(&total)

	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d OFFSET %d",
		quoteIdentifier(tableName, dbType), pageSize, offset)
	rows, err := db.Raw(query).Rows()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", err.Error(), nil)
	}
	defer rows.Close()

	columns, _ := rows.Columns()
	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		_ = rows.Scan(valuePtrs...)

		row := make(map[string]interface{})
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = val
			}
		}
		results = append(results, row)
	}

	return ok(c, map[string]interface{}{
		"data":  results,
		"total": total,
		"page":  page,
		"limit": pageSize,
	})
}

// dbmsExecuteQuery runs a read-only SQL statement
func dbmsExecuteQuery(c echo.Context) error {
	db := GetDB(c)

	var req DBMSQueryRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse query", nil)
	}

	sql := strings.TrimSpace(req.SQL)
	if sql == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "SQL query is required", nil)
	}

	upperSQL := strings.ToUpper(sql)
	isSelect := strings.HasPrefix(upperSQL, "SELECT") ||
		strings.HasPrefix(upperSQL, "EXPLAIN") ||
		strings.HasPrefix(upperSQL, "PRAGMA")
	if !isSelect {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Only read-only queries are allowed", nil)
	}

	result := DBMSQueryResult{Rows: make([]map[string]interface{}, 0)}
	rows, err := db.Raw(sql).Rows()
	if err != nil {
		result.Error = err.Error()
		return ok(c, result)
	}
	defer rows.Close()

	columns, _ := rows.Columns()
	result.Columns = columns
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		_ = rows.Scan(valuePtrs...)

		row := make(map[string]interface{})
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = val
			}
		}
		result.Rows = append(result.Rows, row)
	}

	return ok(c, result)
}

// dbmsGetServerInfo returns basic database server facts
func dbmsGetServerInfo(c echo.Context) error {
	tableNames, dbType, err := dbmsTableNames(c)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", err.Error(), nil)
	}
	return ok(c, DBMSServerInfo{
		DatabaseType: dbType,
		ServerTime:   time.Now().Format(time.RFC3339),
		TableCount:   len(tableNames),
	})
}
