// Package client is the runtime entry point: it opens the database, hands
// out language-aware query sets and saves records with their translations.
package client

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/satishbabariya/multilingual-go/internal/debug"
	"github.com/satishbabariya/multilingual-go/languages"
	"github.com/satishbabariya/multilingual-go/query/compiler"
	"github.com/satishbabariya/multilingual-go/query/executor"
	"github.com/satishbabariya/multilingual-go/query/sqlgen"
	"github.com/satishbabariya/multilingual-go/schema"
)

// Client is the database client
type Client struct {
	db       *sql.DB
	provider string
	registry *schema.Registry
	compiler *compiler.Compiler
	exec     *executor.Executor
	hooks    *hooks
}

type hooks struct {
	mu    sync.RWMutex
	chain []Middleware
}

// NewClient opens a connection for provider and binds it to the models of reg.
func NewClient(provider, connectionString string, reg *schema.Registry) (*Client, error) {
	driverName := DriverName(provider)
	if driverName == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}

	db, err := sql.Open(driverName, connectionString)
	if err != nil {
		return nil, err
	}
	return NewClientFromDB(provider, db, reg)
}

// NewClientFromDB creates a client over an open connection.
func NewClientFromDB(provider string, db *sql.DB, reg *schema.Registry) (*Client, error) {
	if DriverName(provider) == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	return &Client{
		db:       db,
		provider: provider,
		registry: reg,
		compiler: compiler.NewCompiler(provider, reg),
		exec:     executor.NewExecutor(db, provider),
		hooks:    &hooks{},
	}, nil
}

// DriverName maps provider names to database/sql driver names. It returns
// "" for unknown providers.
func DriverName(provider string) string {
	switch provider {
	case "postgresql", "postgres":
		return "postgres"
	case "mysql":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return ""
	}
}

// Connect verifies the database connection
func (c *Client) Connect(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Disconnect closes the database connection
func (c *Client) Disconnect(ctx context.Context) error {
	c.exec.ClearStmtCache()
	return c.db.Close()
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Provider returns the database provider name.
func (c *Client) Provider() string { return c.provider }

// Registry returns the schema registry.
func (c *Client) Registry() *schema.Registry { return c.registry }

// Languages returns the language registry.
func (c *Client) Languages() *languages.Registry { return c.registry.Languages() }

// Compiler returns the query compiler bound to the client's dialect.
func (c *Client) Compiler() *compiler.Compiler { return c.compiler }

// Objects returns a query set over every row of model.
func (c *Client) Objects(model string) (*QuerySet, error) {
	q, err := c.compiler.Query(model)
	if err != nil {
		return nil, err
	}
	return &QuerySet{client: c, query: q}, nil
}

// New returns an unsaved record of model.
func (c *Client) New(model string) (*Record, error) {
	m, err := c.registry.Model(model)
	if err != nil {
		return nil, err
	}
	return newRecord(m, c.Languages()), nil
}

// Save stores the record, its ancestor rows and every changed translation
// in one transaction. New records are inserted; loaded or saved records
// are updated.
func (c *Client) Save(ctx context.Context, rec *Record) error {
	restore := rec.snapshot()
	event := &QueryEvent{Model: rec.model.Name, Operation: "save"}
	err := c.run(ctx, event, func() error {
		return c.exec.WithTx(ctx, nil, func(tx *executor.Executor) error {
			return saveModel(ctx, tx, rec, rec.model)
		})
	})
	if err != nil {
		restore()
		return err
	}
	rec.saved = true
	for _, rows := range rec.translations {
		for _, tr := range rows {
			tr.dirty = false
		}
	}
	return nil
}

func saveModel(ctx context.Context, tx *executor.Executor, rec *Record, m *schema.Model) error {
	for _, p := range m.ParentModels() {
		if err := saveModel(ctx, tx, rec, p); err != nil {
			return err
		}
		rec.values[m.ParentLink(p).Column] = rec.values[p.PK().Column]
	}

	pk := m.PK()
	var cols []string
	var vals []any
	for _, f := range m.ConcreteFields() {
		v, ok := rec.values[f.Column]
		if !ok || f == pk {
			continue
		}
		cols = append(cols, f.Column)
		vals = append(vals, v)
	}

	if rec.saved {
		if len(cols) > 0 {
			if _, err := tx.Update(ctx, m.Table, cols, vals, equals(pk.Column, rec.values[pk.Column])); err != nil {
				return fmt.Errorf("save %s: %w", m.Name, err)
			}
		}
	} else {
		if v := rec.values[pk.Column]; v != nil {
			cols = append(cols, pk.Column)
			vals = append(vals, v)
		}
		id, err := tx.Insert(ctx, m.Table, cols, vals, pk.Column)
		if err != nil {
			return fmt.Errorf("save %s: %w", m.Name, err)
		}
		rec.values[pk.Column] = id
	}
	debug.Debug("client: saved row", "model", m.Name, "pk", rec.values[pk.Column])

	if m.Translation != nil {
		if err := saveTranslations(ctx, tx, rec, m.Translation, rec.values[pk.Column]); err != nil {
			return fmt.Errorf("save %s translations: %w", m.Name, err)
		}
	}
	return nil
}

func saveTranslations(ctx context.Context, tx *executor.Executor, rec *Record, t *schema.Translation, master any) error {
	for _, lang := range rec.langs.IDs() {
		tr := rec.translations[t][lang]
		if tr == nil || !tr.dirty {
			continue
		}
		var cols []string
		var vals []any
		for _, f := range t.Fields {
			if v, ok := tr.values[f.Column]; ok {
				cols = append(cols, f.Column)
				vals = append(vals, v)
			}
		}
		if tr.id != nil {
			if _, err := tx.Update(ctx, t.Table, cols, vals, equals("id", tr.id)); err != nil {
				return err
			}
			continue
		}
		cols = append(cols, t.LanguageColumn, t.MasterColumn)
		vals = append(vals, lang, master)
		id, err := tx.Insert(ctx, t.Table, cols, vals, "id")
		if err != nil {
			return err
		}
		tr.id = id
	}
	return nil
}

// Delete removes the record, its translations and its ancestor rows.
func (c *Client) Delete(ctx context.Context, rec *Record) error {
	if !rec.saved {
		return fmt.Errorf("delete %s: %w", rec.model.Name, ErrNotFound)
	}
	event := &QueryEvent{Model: rec.model.Name, Operation: "delete"}
	err := c.run(ctx, event, func() error {
		return c.exec.WithTx(ctx, nil, func(tx *executor.Executor) error {
			return deleteModel(ctx, tx, rec, rec.model)
		})
	})
	if err != nil {
		return err
	}
	rec.saved = false
	for _, rows := range rec.translations {
		for _, tr := range rows {
			tr.id = nil
			tr.dirty = true
		}
	}
	return nil
}

func deleteModel(ctx context.Context, tx *executor.Executor, rec *Record, m *schema.Model) error {
	pk := rec.values[m.PK().Column]
	if t := m.Translation; t != nil {
		if _, err := tx.Delete(ctx, t.Table, equals(t.MasterColumn, pk)); err != nil {
			return fmt.Errorf("delete %s translations: %w", m.Name, err)
		}
	}
	n, err := tx.Delete(ctx, m.Table, equals(m.PK().Column, pk))
	if err != nil {
		return fmt.Errorf("delete %s: %w", m.Name, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s %v: %w", m.Name, pk, ErrNotFound)
	}
	for _, p := range m.ParentModels() {
		if err := deleteModel(ctx, tx, rec, p); err != nil {
			return err
		}
	}
	return nil
}

func equals(column string, value any) *sqlgen.WhereClause {
	where := sqlgen.NewWhereClause()
	where.AddCondition(sqlgen.Condition{Field: column, Operator: "=", Value: value})
	return where
}
