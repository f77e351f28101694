package rowsource

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"retention-dashboard/internal/models"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// MySQLSource reads line-item rows from a MySQL/MariaDB table with the
// columns order_name, order_date, customer_id, customer_order_index,
// product_title, eshop and total_sales.
type MySQLSource struct {
	db    *sql.DB
	table string
}

// OpenMySQL connects using either a driver DSN or a mysql://-style URL.
func OpenMySQL(dsn, table string) (*MySQLSource, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &MySQLSource{db: db, table: table}, nil
}

func (s *MySQLSource) Close() error {
	return s.db.Close()
}

func (s *MySQLSource) Fetch(ctx context.Context) ([]models.RawRow, error) {
	q := fmt.Sprintf(`
		SELECT
			COALESCE(order_name, ''),
			DATE_FORMAT(order_date, '%%Y-%%m-%%d'),
			COALESCE(customer_id, ''),
			COALESCE(customer_order_index, 0),
			COALESCE(product_title, ''),
			COALESCE(eshop, ''),
			COALESCE(total_sales, 0)
		FROM %s
		ORDER BY order_date, order_name
	`, s.table)

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ErrUnavailable, s.table, err)
	}
	defer rows.Close()

	var out []models.RawRow
	for rows.Next() {
		var (
			orderName, customerID, product, shop string
			date                                 sql.NullString
			orderIndex                           int
			totalSales                           float64
		)
		if err := rows.Scan(&orderName, &date, &customerID, &orderIndex, &product, &shop, &totalSales); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, models.RawRow{
			models.ColOrderName:  orderName,
			models.ColDate:       date.String,
			models.ColCustomerID: customerID,
			models.ColOrderIndex: strconv.Itoa(orderIndex),
			models.ColProduct:    product,
			models.ColShop:       shop,
			models.ColTotalSales: strconv.FormatFloat(totalSales, 'f', -1, 64),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read rows: %v", ErrUnavailable, err)
	}
	return out, nil
}

// toMySQLDSN rewrites mariadb:// or mysql:// URLs into the driver's DSN form.
func toMySQLDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "mariadb://") && !strings.HasPrefix(dsn, "mysql://") {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	user := ""
	pass := ""
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	db := strings.TrimPrefix(u.Path, "/")
	if user == "" || u.Host == "" || db == "" {
		return "", fmt.Errorf("incomplete dsn: user, host and database are required")
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?interpolateParams=true", user, pass, u.Host, db), nil
}
