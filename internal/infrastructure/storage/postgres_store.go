package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"CrimeScanner/internal/domain"
	"CrimeScanner/internal/ports"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const schema = `
CREATE TABLE IF NOT EXISTS sources (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL,
    url         TEXT NOT NULL UNIQUE,
    logo        TEXT,
    country     TEXT NOT NULL,
    is_nigerian BOOLEAN NOT NULL DEFAULT FALSE,
    is_active   BOOLEAN NOT NULL DEFAULT TRUE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS categories (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    description TEXT,
    color       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS articles (
    id              BIGSERIAL PRIMARY KEY,
    title           TEXT NOT NULL,
    content         TEXT NOT NULL,
    url             TEXT NOT NULL UNIQUE,
    source_id       BIGINT NOT NULL REFERENCES sources (id),
    category_id     BIGINT REFERENCES categories (id) ON DELETE SET NULL,
    published_at    TIMESTAMPTZ,
    scraped_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    sentiment       TEXT,
    sentiment_score INTEGER,
    metadata        JSONB
);
CREATE INDEX IF NOT EXISTS articles_published_at_idx ON articles (published_at DESC NULLS LAST);
CREATE INDEX IF NOT EXISTS articles_source_id_idx ON articles (source_id);
`

var articleColumns = []string{
	"a.id", "a.title", "a.content", "a.url", "a.source_id", "a.category_id",
	"a.published_at", "a.scraped_at", "a.sentiment", "a.sentiment_score", "a.metadata",
	"s.id", "s.name", "s.url", "s.logo", "s.country", "s.is_nigerian",
	"c.id", "c.name", "c.color",
}

var sourceColumns = []string{"id", "name", "url", "logo", "country", "is_nigerian", "is_active", "created_at"}

var categoryColumns = []string{"id", "name", "color", "description"}

// PostgresStore persists sources, categories and articles into Postgres.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ ports.SourceRegistry   = (*PostgresStore)(nil)
	_ ports.CategoryRegistry = (*PostgresStore)(nil)
	_ ports.ArticleStore     = (*PostgresStore)(nil)
)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// OpenPostgres connects, pings and creates the schema when missing.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := NewPostgresStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// EnsureSchema creates tables and indexes if they do not exist.
func (r *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *PostgresStore) Close() error {
	return r.db.Close()
}

// ListSources returns every source in id order.
func (r *PostgresStore) ListSources(ctx context.Context) ([]domain.Source, error) {
	return r.querySources(ctx, psql.Select(sourceColumns...).From("sources").OrderBy("id"))
}

// ActiveSources returns sources with is_active set.
func (r *PostgresStore) ActiveSources(ctx context.Context) ([]domain.Source, error) {
	return r.querySources(ctx, psql.Select(sourceColumns...).From("sources").Where(sq.Eq{"is_active": true}).OrderBy("id"))
}

// GetSource returns one source or domain.ErrNotFound.
func (r *PostgresStore) GetSource(ctx context.Context, id int64) (domain.Source, error) {
	sources, err := r.querySources(ctx, psql.Select(sourceColumns...).From("sources").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.Source{}, err
	}
	if len(sources) == 0 {
		return domain.Source{}, fmt.Errorf("source %d: %w", id, domain.ErrNotFound)
	}
	return sources[0], nil
}

// CreateSource inserts a source; the URL must be unique.
func (r *PostgresStore) CreateSource(ctx context.Context, src domain.NewSource) (domain.Source, error) {
	query, args, err := psql.Insert("sources").
		Columns("name", "url", "logo", "country", "is_nigerian", "is_active", "created_at").
		Values(src.Name, src.URL, nullString(src.Logo), src.Country, src.IsNigerian, src.IsActive, r.now().UTC()).
		Suffix("RETURNING " + strings.Join(sourceColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.Source{}, fmt.Errorf("build insert source: %w", err)
	}

	created, err := scanSource(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return domain.Source{}, fmt.Errorf("source %s: %w", src.URL, domain.ErrConflict)
		}
		return domain.Source{}, fmt.Errorf("insert source: %w", err)
	}
	return created, nil
}

// SetSourceActive toggles whether sweeps visit the source.
func (r *PostgresStore) SetSourceActive(ctx context.Context, id int64, active bool) (domain.Source, error) {
	query, args, err := psql.Update("sources").
		Set("is_active", active).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(sourceColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.Source{}, fmt.Errorf("build update source: %w", err)
	}

	updated, err := scanSource(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Source{}, fmt.Errorf("source %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Source{}, fmt.Errorf("update source: %w", err)
	}
	return updated, nil
}

// ListCategories returns every category in id order.
func (r *PostgresStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return r.queryCategories(ctx, psql.Select(categoryColumns...).From("categories").OrderBy("id"))
}

// GetCategory returns one category or domain.ErrNotFound.
func (r *PostgresStore) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	cats, err := r.queryCategories(ctx, psql.Select(categoryColumns...).From("categories").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.Category{}, err
	}
	if len(cats) == 0 {
		return domain.Category{}, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	return cats[0], nil
}

// FindCategoryByName matches the exact category name.
func (r *PostgresStore) FindCategoryByName(ctx context.Context, name string) (domain.Category, error) {
	cats, err := r.queryCategories(ctx, psql.Select(categoryColumns...).From("categories").Where(sq.Eq{"name": name}))
	if err != nil {
		return domain.Category{}, err
	}
	if len(cats) == 0 {
		return domain.Category{}, fmt.Errorf("category %q: %w", name, domain.ErrNotFound)
	}
	return cats[0], nil
}

// CreateCategory inserts a category; the name must be unique.
func (r *PostgresStore) CreateCategory(ctx context.Context, cat domain.NewCategory) (domain.Category, error) {
	query, args, err := psql.Insert("categories").
		Columns("name", "color", "description").
		Values(cat.Name, cat.Color, nullString(cat.Description)).
		Suffix("RETURNING " + strings.Join(categoryColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.Category{}, fmt.Errorf("build insert category: %w", err)
	}

	created, err := scanCategory(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return domain.Category{}, fmt.Errorf("category %q: %w", cat.Name, domain.ErrConflict)
		}
		return domain.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return created, nil
}

// CreateArticle inserts an article. The serial id keeps ids strictly increasing.
func (r *PostgresStore) CreateArticle(ctx context.Context, in domain.NewArticle) (domain.Article, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Article{}, &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.URL) == "" {
		return domain.Article{}, &domain.ValidationError{Field: "url", Reason: "must not be empty"}
	}

	metadata, err := encodeMetadata(in.Metadata)
	if err != nil {
		return domain.Article{}, err
	}

	now := r.now().UTC()
	published := now
	if in.PublishedAt != nil {
		published = *in.PublishedAt
	}

	query, args, err := psql.Insert("articles").
		Columns("title", "content", "url", "source_id", "category_id", "published_at",
			"scraped_at", "sentiment", "sentiment_score", "metadata").
		Values(in.Title, in.Content, in.URL, in.SourceID, in.CategoryID, published,
			now, sentimentValue(in.Sentiment), in.SentimentScore, metadata).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build insert article: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return domain.Article{}, mapArticleWriteError(err, 0, in.SourceID, in.URL)
	}

	return cloneArticle(domain.Article{
		ID:             id,
		Title:          in.Title,
		Content:        in.Content,
		URL:            in.URL,
		SourceID:       in.SourceID,
		CategoryID:     in.CategoryID,
		PublishedAt:    &published,
		ScrapedAt:      now,
		Sentiment:      in.Sentiment,
		SentimentScore: in.SentimentScore,
		Metadata:       in.Metadata,
	}), nil
}

// UpdateArticle applies the non-nil fields of update inside a transaction.
func (r *PostgresStore) UpdateArticle(ctx context.Context, id int64, update domain.ArticleUpdate) (domain.Article, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Article{}, fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := psql.Select(articleColumns...).
		From("articles a").
		LeftJoin("sources s ON s.id = a.source_id").
		LeftJoin("categories c ON c.id = a.category_id").
		Where(sq.Eq{"a.id": id}).
		Suffix("FOR UPDATE OF a").
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build select article: %w", err)
	}

	row, err := scanArticleRow(tx.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, fmt.Errorf("article %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("select article: %w", err)
	}

	updated := update.Apply(row.article)
	metadata, err := encodeMetadata(updated.Metadata)
	if err != nil {
		return domain.Article{}, err
	}

	query, args, err = psql.Update("articles").
		SetMap(map[string]any{
			"title":           updated.Title,
			"content":         updated.Content,
			"url":             updated.URL,
			"source_id":       updated.SourceID,
			"category_id":     updated.CategoryID,
			"published_at":    updated.PublishedAt,
			"sentiment":       sentimentValue(updated.Sentiment),
			"sentiment_score": updated.SentimentScore,
			"metadata":        metadata,
		}).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build update article: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return domain.Article{}, mapArticleWriteError(err, id, updated.SourceID, updated.URL)
	}
	if err := tx.Commit(); err != nil {
		return domain.Article{}, fmt.Errorf("commit update: %w", err)
	}
	return updated, nil
}

// GetArticle returns the article joined with its source and category.
func (r *PostgresStore) GetArticle(ctx context.Context, id int64) (domain.ArticleWithDetails, error) {
	rows, err := r.queryArticles(ctx, selectArticles().Where(sq.Eq{"a.id": id}))
	if err != nil {
		return domain.ArticleWithDetails{}, err
	}
	if len(rows) == 0 {
		return domain.ArticleWithDetails{}, fmt.Errorf("article %d: %w", id, domain.ErrNotFound)
	}
	return rows[0], nil
}

// QueryArticles filters, sorts and paginates in SQL; the count uses the same predicates.
func (r *PostgresStore) QueryArticles(ctx context.Context, filter domain.ArticleFilter) (domain.ArticlePage, error) {
	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return domain.ArticlePage{}, err
	}

	countQuery, countArgs, err := buildCountQuery(filter)
	if err != nil {
		return domain.ArticlePage{}, fmt.Errorf("build count query: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return domain.ArticlePage{}, fmt.Errorf("begin query: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int
	if err := tx.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return domain.ArticlePage{}, fmt.Errorf("count articles: %w", err)
	}

	articles, err := queryArticleRows(ctx, tx, buildArticleQuery(filter))
	if err != nil {
		return domain.ArticlePage{}, err
	}
	return domain.ArticlePage{Articles: articles, Total: total}, nil
}

// LatestArticles returns up to limit articles, newest publishedAt first.
func (r *PostgresStore) LatestArticles(ctx context.Context, limit int) ([]domain.ArticleWithDetails, error) {
	if limit <= 0 {
		return []domain.ArticleWithDetails{}, nil
	}
	return r.queryArticles(ctx, selectArticles().
		OrderBy(orderClauses(domain.SortByPublishedAt, domain.SortDesc)...).
		Limit(uint64(limit)))
}

// ArticleStats counts articles by category, source nationality and sentiment.
func (r *PostgresStore) ArticleStats(ctx context.Context) (domain.ArticleStats, error) {
	stats := domain.ArticleStats{
		CategoryCounts:  []domain.CategoryCount{},
		SentimentCounts: []domain.SentimentCount{},
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&stats.Total); err != nil {
		return domain.ArticleStats{}, fmt.Errorf("count articles: %w", err)
	}

	catRows, err := r.db.QueryContext(ctx, `
		SELECT a.category_id, COALESCE(c.name, $1), COUNT(*)
		FROM articles a LEFT JOIN categories c ON c.id = a.category_id
		WHERE a.category_id IS NOT NULL
		GROUP BY a.category_id, c.name
		ORDER BY a.category_id`, domain.UnknownCategoryName)
	if err != nil {
		return domain.ArticleStats{}, fmt.Errorf("count by category: %w", err)
	}
	err = collectRows(catRows, func(rows *sql.Rows) error {
		var cc domain.CategoryCount
		if err := rows.Scan(&cc.CategoryID, &cc.CategoryName, &cc.Count); err != nil {
			return err
		}
		stats.CategoryCounts = append(stats.CategoryCounts, cc)
		return nil
	})
	if err != nil {
		return domain.ArticleStats{}, fmt.Errorf("count by category: %w", err)
	}

	var orphans int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM articles a LEFT JOIN sources s ON s.id = a.source_id
		WHERE s.id IS NULL`).Scan(&orphans); err != nil {
		return domain.ArticleStats{}, fmt.Errorf("check sources: %w", err)
	}
	if orphans > 0 {
		return domain.ArticleStats{}, &domain.IntegrityError{Detail: fmt.Sprintf("%d articles reference missing sources", orphans)}
	}

	var nigerian int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM articles a JOIN sources s ON s.id = a.source_id
		WHERE s.is_nigerian`).Scan(&nigerian); err != nil {
		return domain.ArticleStats{}, fmt.Errorf("count by nationality: %w", err)
	}
	stats.SourceCounts = []domain.SourceCount{
		{IsNigerian: true, Count: nigerian},
		{IsNigerian: false, Count: stats.Total - nigerian},
	}

	sentRows, err := r.db.QueryContext(ctx, `
		SELECT sentiment, COUNT(*) FROM articles
		WHERE sentiment IS NOT NULL
		GROUP BY sentiment ORDER BY sentiment`)
	if err != nil {
		return domain.ArticleStats{}, fmt.Errorf("count by sentiment: %w", err)
	}
	err = collectRows(sentRows, func(rows *sql.Rows) error {
		var sc domain.SentimentCount
		if err := rows.Scan(&sc.Sentiment, &sc.Count); err != nil {
			return err
		}
		stats.SentimentCounts = append(stats.SentimentCounts, sc)
		return nil
	})
	if err != nil {
		return domain.ArticleStats{}, fmt.Errorf("count by sentiment: %w", err)
	}

	return stats, nil
}

// ArticleURLExists reports whether an article with url is stored.
func (r *PostgresStore) ArticleURLExists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM articles WHERE url = $1)`, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check url: %w", err)
	}
	return exists, nil
}

func selectArticles() sq.SelectBuilder {
	return psql.Select(articleColumns...).
		From("articles a").
		LeftJoin("sources s ON s.id = a.source_id").
		LeftJoin("categories c ON c.id = a.category_id")
}

// applyArticleFilter adds the WHERE predicates; all of them reference only articles columns.
func applyArticleFilter(b sq.SelectBuilder, f domain.ArticleFilter) sq.SelectBuilder {
	if len(f.CategoryIDs) > 0 {
		b = b.Where(sq.Eq{"a.category_id": f.CategoryIDs})
	}
	if len(f.SourceIDs) > 0 {
		b = b.Where(sq.Eq{"a.source_id": f.SourceIDs})
	}
	if len(f.Sentiments) > 0 {
		labels := make([]string, 0, len(f.Sentiments))
		for _, s := range f.Sentiments {
			labels = append(labels, string(s))
		}
		b = b.Where(sq.Eq{"a.sentiment": labels})
	}
	if f.DateFrom != nil {
		b = b.Where(sq.GtOrEq{"a.published_at": *f.DateFrom})
	}
	if f.DateTo != nil {
		b = b.Where(sq.LtOrEq{"a.published_at": *f.DateTo})
	}
	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		pattern := "%" + likeEscaper.Replace(term) + "%"
		b = b.Where(sq.Expr("(a.title ILIKE ? OR a.content ILIKE ?)", pattern, pattern))
	}
	return b
}

func orderClauses(by domain.SortField, order domain.SortOrder) []string {
	dir := "DESC"
	if order == domain.SortAsc {
		dir = "ASC"
	}

	column := "a.published_at"
	switch by {
	case domain.SortBySentiment:
		column = "a.sentiment_score"
	case domain.SortByRelevance:
		dir = "DESC"
	}
	return []string{column + " " + dir + " NULLS LAST", "a.id ASC"}
}

func buildArticleQuery(f domain.ArticleFilter) sq.SelectBuilder {
	return applyArticleFilter(selectArticles(), f).
		OrderBy(orderClauses(f.SortBy, f.SortOrder)...).
		Limit(uint64(f.PageSize)).
		Offset(uint64(f.Offset()))
}

func buildCountQuery(f domain.ArticleFilter) (string, []any, error) {
	return applyArticleFilter(psql.Select("COUNT(*)").From("articles a"), f).ToSql()
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *PostgresStore) queryArticles(ctx context.Context, b sq.SelectBuilder) ([]domain.ArticleWithDetails, error) {
	return queryArticleRows(ctx, r.db, b)
}

func queryArticleRows(ctx context.Context, q queryer, b sq.SelectBuilder) ([]domain.ArticleWithDetails, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}

	out := []domain.ArticleWithDetails{}
	err = collectRows(rows, func(rows *sql.Rows) error {
		row, err := scanArticleRow(rows)
		if err != nil {
			return err
		}
		details, err := row.details()
		if err != nil {
			return err
		}
		out = append(out, details)
		return nil
	})
	if err != nil {
		if domain.IsIntegrity(err) {
			return nil, err
		}
		return nil, fmt.Errorf("read articles: %w", err)
	}
	return out, nil
}

func (r *PostgresStore) querySources(ctx context.Context, b sq.SelectBuilder) ([]domain.Source, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build source query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}

	out := []domain.Source{}
	err = collectRows(rows, func(rows *sql.Rows) error {
		s, err := scanSource(rows)
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}
	return out, nil
}

func (r *PostgresStore) queryCategories(ctx context.Context, b sq.SelectBuilder) ([]domain.Category, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}

	out := []domain.Category{}
	err = collectRows(rows, func(rows *sql.Rows) error {
		c, err := scanCategory(rows)
		if err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	return out, nil
}

// collectRows iterates, checks rows.Err and always closes.
func collectRows(rows *sql.Rows, fn func(*sql.Rows) error) error {
	for rows.Next() {
		if err := fn(rows); err != nil {
			_ = rows.Close()
			return err
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("rows iteration: %w", err)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("close rows: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

type articleRow struct {
	article    domain.Article
	sourceID   sql.NullInt64
	sourceName sql.NullString
	sourceURL  sql.NullString
	sourceLogo sql.NullString
	country    sql.NullString
	isNigerian sql.NullBool
	catID      sql.NullInt64
	catName    sql.NullString
	catColor   sql.NullString
}

func scanArticleRow(s rowScanner) (articleRow, error) {
	var (
		row        articleRow
		categoryID sql.NullInt64
		published  sql.NullTime
		sentiment  sql.NullString
		score      sql.NullInt64
		metadata   []byte
	)

	err := s.Scan(
		&row.article.ID, &row.article.Title, &row.article.Content, &row.article.URL,
		&row.article.SourceID, &categoryID, &published, &row.article.ScrapedAt,
		&sentiment, &score, &metadata,
		&row.sourceID, &row.sourceName, &row.sourceURL, &row.sourceLogo, &row.country, &row.isNigerian,
		&row.catID, &row.catName, &row.catColor,
	)
	if err != nil {
		return articleRow{}, err
	}

	if categoryID.Valid {
		id := categoryID.Int64
		row.article.CategoryID = &id
	}
	if published.Valid {
		t := published.Time.UTC()
		row.article.PublishedAt = &t
	}
	if sentiment.Valid {
		label := domain.Sentiment(sentiment.String)
		row.article.Sentiment = &label
	}
	if score.Valid {
		v := int(score.Int64)
		row.article.SentimentScore = &v
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &row.article.Metadata); err != nil {
			return articleRow{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	row.article.ScrapedAt = row.article.ScrapedAt.UTC()
	return row, nil
}

func (row articleRow) details() (domain.ArticleWithDetails, error) {
	if !row.sourceID.Valid {
		return domain.ArticleWithDetails{}, &domain.IntegrityError{ArticleID: row.article.ID, SourceID: row.article.SourceID}
	}
	src := domain.Source{
		ID:         row.sourceID.Int64,
		Name:       row.sourceName.String,
		URL:        row.sourceURL.String,
		Logo:       row.sourceLogo.String,
		Country:    row.country.String,
		IsNigerian: row.isNigerian.Bool,
	}

	var cat *domain.Category
	if row.catID.Valid {
		cat = &domain.Category{ID: row.catID.Int64, Name: row.catName.String, Color: row.catColor.String}
	}
	return row.article.WithDetails(src, cat), nil
}

func scanSource(s rowScanner) (domain.Source, error) {
	var (
		src  domain.Source
		logo sql.NullString
	)
	if err := s.Scan(&src.ID, &src.Name, &src.URL, &logo, &src.Country, &src.IsNigerian, &src.IsActive, &src.CreatedAt); err != nil {
		return domain.Source{}, err
	}
	src.Logo = logo.String
	src.CreatedAt = src.CreatedAt.UTC()
	return src, nil
}

func scanCategory(s rowScanner) (domain.Category, error) {
	var (
		cat  domain.Category
		desc sql.NullString
	)
	if err := s.Scan(&cat.ID, &cat.Name, &cat.Color, &desc); err != nil {
		return domain.Category{}, err
	}
	cat.Description = desc.String
	return cat, nil
}

func encodeMetadata(m map[string]any) (any, error) {
	if m == nil {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	// jsonb parameters must be sent as text, not bytea
	return string(raw), nil
}

func sentimentValue(s *domain.Sentiment) any {
	if s == nil {
		return nil
	}
	return string(*s)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isPQCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

func mapArticleWriteError(err error, articleID, sourceID int64, url string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return fmt.Errorf("write article: %w", err)
	}

	switch string(pqErr.Code) {
	case pqUniqueViolation:
		return fmt.Errorf("write article %s: %w", url, domain.ErrDuplicateURL)
	case pqForeignKeyViolation:
		if strings.Contains(pqErr.Constraint, "category") {
			return &domain.ValidationError{Field: "categoryId", Reason: "category does not exist"}
		}
		return &domain.IntegrityError{ArticleID: articleID, SourceID: sourceID, Detail: "source does not exist"}
	default:
		return fmt.Errorf("write article: %w", err)
	}
}
