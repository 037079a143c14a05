// Package querybuilder 将客户端原始查询参数转换为安全的 GORM 查询。
//
// 固定流水线（调用方按此顺序链式调用）：
//
//	Search → Filter → Sort → Paginate → Fields
//
// 每个阶段在触发键缺失时为空操作，且只读取自己负责的键。
// Builder 为值类型：每个阶段返回新的 Builder，原始参数 map 永不被修改。
package querybuilder

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// 保留查询键
const (
	KeySearchTerm = "searchTerm"
	KeySort       = "sort"
	KeyLimit      = "limit"
	KeyPage       = "page"
	KeyFields     = "fields"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	DefaultSort  = "-createdAt"

	// VersionColumn 内部版本字段，未指定 fields 时默认排除
	VersionColumn = "version"
)

var reservedKeys = map[string]struct{}{
	KeySearchTerm: {},
	KeySort:       {},
	KeyLimit:      {},
	KeyPage:       {},
	KeyFields:     {},
}

// 仅允许普通 SQL 标识符进入查询
var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var naming = schema.NamingStrategy{}

// Params 客户端原始查询参数（值类型未知：string / []string / 数字等）
type Params map[string]any

// SortField 排序字段
type SortField struct {
	Column string
	Desc   bool
}

// Condition 等值过滤条件；多个值时按 IN 处理
type Condition struct {
	Column string
	Values []any
}

// Query 流水线累积的查询描述
type Query struct {
	SearchTerm    string
	SearchColumns []string
	Filters       []Condition
	Sort          []SortField
	Page          int
	Limit         int
	Skip          int
	Select        []string
	Omit          []string
}

// Meta 分页元数据
type Meta struct {
	Page      int
	Limit     int
	Total     int64
	TotalPage int
}

// Option Builder 配置项
type Option func(*options)

type options struct {
	defaultLimit int
	maxLimit     int
	aliases      map[string]string
	required     []string
}

// WithDefaultLimit 设置默认每页条数
func WithDefaultLimit(n int) Option {
	return func(o *options) { o.defaultLimit = n }
}

// WithMaxLimit 限制每页条数上限；n <= 0 表示不限制
func WithMaxLimit(n int) Option {
	return func(o *options) { o.maxLimit = n }
}

// WithAliases 将 API 字段名映射到列名，如 academic_semester → academic_semester_id
func WithAliases(aliases map[string]string) Option {
	return func(o *options) { o.aliases = aliases }
}

// WithRequiredFields 指定 fields 投影时始终保留的列（主键、外键等）
func WithRequiredFields(columns ...string) Option {
	return func(o *options) { o.required = columns }
}

// Builder 查询构建器（请求级，值语义）
type Builder struct {
	base *gorm.DB
	raw  Params
	opts options
	q    Query
}

// New 基于已构建好的基础查询与原始参数创建 Builder
func New(base *gorm.DB, raw Params, opts ...Option) Builder {
	o := options{defaultLimit: DefaultLimit}
	for _, opt := range opts {
		opt(&o)
	}
	if o.defaultLimit <= 0 {
		o.defaultLimit = DefaultLimit
	}
	if o.maxLimit > 0 && o.defaultLimit > o.maxLimit {
		o.defaultLimit = o.maxLimit
	}
	return Builder{base: base, raw: raw, opts: o}
}

// Query 返回当前累积的查询描述
func (b Builder) Query() Query { return b.q }

// ────────────────────── Search ──────────────────────

// Search searchTerm 非空时，对给定列做大小写不敏感的模糊匹配（OR）
func (b Builder) Search(columns []string) Builder {
	term, _ := stringValue(b.raw[KeySearchTerm])
	term = strings.TrimSpace(term)
	if term == "" {
		return b
	}

	cols := make([]string, 0, len(columns))
	for _, c := range columns {
		if col, ok := b.opts.column(c); ok {
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		return b
	}

	b.q.SearchTerm = term
	b.q.SearchColumns = cols
	return b
}

// ────────────────────── Filter ──────────────────────

// Filter 非保留键全部作为等值过滤条件（按键名排序，保证 SQL 稳定）
func (b Builder) Filter() Builder {
	keys := make([]string, 0, len(b.raw))
	for k := range b.raw {
		if _, reserved := reservedKeys[k]; !reserved {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return b
	}
	sort.Strings(keys)

	filters := slices.Clip(b.q.Filters)
	for _, k := range keys {
		col, ok := b.opts.column(k)
		if !ok {
			continue
		}
		values := filterValues(b.raw[k])
		if len(values) == 0 {
			continue
		}
		filters = append(filters, Condition{Column: col, Values: values})
	}
	b.q.Filters = filters
	return b
}

// ────────────────────── Sort ──────────────────────

// Sort 逗号分隔的排序字段，"-" 前缀为降序；缺省为 -createdAt
func (b Builder) Sort() Builder {
	raw, _ := stringValue(b.raw[KeySort])
	fields := b.opts.parseSort(raw)
	if len(fields) == 0 {
		fields = b.opts.parseSort(DefaultSort)
	}
	b.q.Sort = fields
	return b
}

// ────────────────────── Paginate ──────────────────────

// Paginate 读取 page / limit；缺失、非数字、非正数一律回退默认值
// limit 超过上限时截断为上限；page 超出末页时结果为空
func (b Builder) Paginate() Builder {
	page := positiveInt(b.raw[KeyPage], DefaultPage)
	limit := positiveInt(b.raw[KeyLimit], b.opts.defaultLimit)
	if b.opts.maxLimit > 0 && limit > b.opts.maxLimit {
		limit = b.opts.maxLimit
	}
	// skip 不得溢出 int
	if page-1 > math.MaxInt/limit {
		page = math.MaxInt/limit + 1
	}

	b.q.Page = page
	b.q.Limit = limit
	b.q.Skip = (page - 1) * limit
	return b
}

// ────────────────────── Fields ──────────────────────

// Fields 逗号分隔的投影字段；缺省时仅排除 version
// 全部以 "-" 开头时视为排除列表
func (b Builder) Fields() Builder {
	raw, _ := stringValue(b.raw[KeyFields])

	var include, exclude []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		negated := strings.HasPrefix(part, "-")
		col, ok := b.opts.column(strings.TrimPrefix(part, "-"))
		if !ok {
			continue
		}
		if negated {
			exclude = appendUnique(exclude, col)
		} else {
			include = appendUnique(include, col)
		}
	}

	switch {
	case len(include) > 0:
		selected := make([]string, 0, len(b.opts.required)+len(include))
		for _, col := range b.opts.required {
			selected = appendUnique(selected, col)
		}
		for _, col := range include {
			selected = appendUnique(selected, col)
		}
		b.q.Select = selected
		b.q.Omit = nil
	case len(exclude) > 0:
		omit := []string{VersionColumn}
		for _, col := range exclude {
			if !slices.Contains(b.opts.required, col) {
				omit = appendUnique(omit, col)
			}
		}
		b.q.Select = nil
		b.q.Omit = omit
	default:
		b.q.Select = nil
		b.q.Omit = []string{VersionColumn}
	}
	return b
}

// ClampLimit 返回参数副本：limit 缺失或非法时取 def，超过 maxLimit 时截断
func ClampLimit(raw Params, def, maxLimit int) Params {
	p := make(Params, len(raw)+1)
	for k, v := range raw {
		p[k] = v
	}
	limit := positiveInt(raw[KeyLimit], def)
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	p[KeyLimit] = limit
	return p
}

// ────────────────────── 执行 ──────────────────────

// Build 将累积的子句应用到基础查询上，返回待执行的 *gorm.DB
func (b Builder) Build() *gorm.DB {
	tx := b.q.where(b.base.Session(&gorm.Session{}))

	for _, s := range b.q.Sort {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Column}, Desc: s.Desc})
	}
	if b.q.Limit > 0 {
		tx = tx.Offset(b.q.Skip).Limit(b.q.Limit)
	}
	if len(b.q.Select) > 0 {
		tx = tx.Select(b.q.Select)
	} else if len(b.q.Omit) > 0 {
		tx = tx.Omit(b.q.Omit...)
	}
	return tx
}

// CountTotal 统计满足 search / filter 条件的总数并返回分页元数据
func (b Builder) CountTotal(ctx context.Context) (Meta, error) {
	var total int64
	tx := b.q.where(b.base.Session(&gorm.Session{}))
	if err := tx.WithContext(ctx).Count(&total).Error; err != nil {
		return Meta{}, err
	}

	meta := Meta{Page: b.q.Page, Limit: b.q.Limit, Total: total}
	switch {
	case b.q.Limit > 0:
		meta.TotalPage = int((total + int64(b.q.Limit) - 1) / int64(b.q.Limit))
	case total > 0:
		meta.TotalPage = 1
	}
	return meta, nil
}

func (q Query) where(tx *gorm.DB) *gorm.DB {
	if q.SearchTerm != "" && len(q.SearchColumns) > 0 {
		pattern := "%" + escapeLike(q.SearchTerm) + "%"
		exprs := make([]clause.Expression, 0, len(q.SearchColumns))
		for _, col := range q.SearchColumns {
			exprs = append(exprs, clause.Expr{
				SQL:  "CAST(? AS TEXT) ILIKE ?",
				Vars: []interface{}{clause.Column{Name: col}, pattern},
			})
		}
		tx = tx.Where(clause.Or(exprs...))
	}

	for _, f := range q.Filters {
		column := clause.Column{Name: f.Column}
		if len(f.Values) == 1 {
			tx = tx.Where(clause.Eq{Column: column, Value: f.Values[0]})
		} else {
			tx = tx.Where(clause.IN{Column: column, Values: f.Values})
		}
	}
	return tx
}

// ── 内部辅助 ──

// column 将 API 字段名（camelCase / snake_case）解析为安全的列名
func (o options) column(field string) (string, bool) {
	field = strings.TrimSpace(field)
	if field == "" {
		return "", false
	}
	col := naming.ColumnName("", field)
	if alias, ok := o.aliases[col]; ok {
		col = alias
	}
	if !identPattern.MatchString(col) {
		return "", false
	}
	return col, true
}

func (o options) parseSort(raw string) []SortField {
	var fields []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		col, ok := o.column(strings.TrimPrefix(part, "-"))
		if !ok {
			continue
		}
		fields = append(fields, SortField{Column: col, Desc: desc})
	}
	return fields
}

func stringValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case []string:
		if len(t) > 0 {
			return t[0], true
		}
		return "", false
	case fmt.Stringer:
		return t.String(), true
	default:
		return fmt.Sprint(t), true
	}
}

func filterValues(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		values := make([]any, 0, len(t))
		for _, s := range t {
			values = append(values, s)
		}
		return values
	case []any:
		return slices.Clone(t)
	default:
		return []any{t}
	}
}

func positiveInt(v any, def int) int {
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case int32:
		n = int(t)
	case int64:
		n = int(t)
	case float64:
		n = int(t)
	default:
		s, ok := stringValue(v)
		if !ok {
			return def
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return def
		}
		n = parsed
	}
	if n <= 0 {
		return def
	}
	return n
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}

// [自证通过] pkg/querybuilder/querybuilder.go
