package dbal

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/dynamic-entities-go/entity"
)

const literalPositiveScore = "? > 0"

// searchPlan holds the statements of an id search.
type searchPlan struct {
	ids     *goqu.SelectDataset
	total   *goqu.SelectDataset
	columns int
	scored  bool
}

// readSlot maps a selected column to a property of the root row or of an eagerly joined association.
type readSlot struct {
	association string
	field       entity.Field
}

// readPlan holds the columns of a row read and where their values go.
type readPlan struct {
	columns      []any
	slots        []readSlot
	joins        *ParseResult
	associations map[string]string
}

// SearchIDs returns the ids of the rows of definition matching the criteria.
//
// Filters and post filters are combined with AND. Scoring queries rank the rows, rows scoring
// zero are dropped. Rows are ordered by the sortings, then by score and finally by id, and
// paged with the criteria's offset and limit. The total is only counted with entity.ExactTotalCount,
// otherwise it is the number of ids returned.
func (s *Store) SearchIDs(
	ctx context.Context,
	definition *entity.Definition,
	criteria *entity.Criteria,
) (entity.IDSearchResult, error) {

	observer, ctx := s.observe(ctx, operationSearchIDs, definition.Name())
	shopContext := entity.ShopContextFrom(ctx)

	if criteria == nil {
		criteria = entity.NewCriteria()
	}

	plan, err := s.buildSearchPlan(definition, criteria, shopContext)
	if err != nil {
		observer.finishError(errorTypeParse)
		return entity.IDSearchResult{}, err
	}

	ids, scores, err := s.queryIDs(ctx, plan)
	if err != nil {
		observer.finishError(errorTypeOf(err))
		return entity.IDSearchResult{}, err
	}

	total := len(ids)

	if criteria.TotalCountMode() == entity.ExactTotalCount {
		total, err = s.queryTotal(ctx, plan)
		if err != nil {
			observer.finishError(errorTypeOf(err))
			return entity.IDSearchResult{}, err
		}
	}

	s.logOperation(ctx, logMsgIDsSearched, logAttrEntity, definition.Name(), logAttrRowCount, len(ids), logAttrTotal, total)
	observer.finishSuccess(len(ids))

	return entity.NewIDSearchResult(ids, scores, total, criteria, shopContext), nil
}

func (s *Store) buildSearchPlan(
	definition *entity.Definition,
	criteria *entity.Criteria,
	shopContext entity.ShopContext,
) (searchPlan, error) {

	primaryKey, err := searchKey(definition)
	if err != nil {
		return searchPlan{}, err
	}

	parser := s.Parser()

	filters, err := parser.ParseAll(criteria.AllFilters(), definition, shopContext)
	if err != nil {
		return searchPlan{}, err
	}

	ranking, err := parser.ParseRanking(criteria.Queries(), definition, shopContext)
	if err != nil {
		return searchPlan{}, err
	}

	joins := NewParseResult()
	joins.AddJoin(filters.Joins()...)
	joins.AddJoin(ranking.Joins()...)

	idColumn := goqu.T(definition.Name()).Col(primaryKey.StorageName())
	columns := []any{idColumn}
	wheres := make([]exp.Expression, 0, 2)
	orders := make([]exp.OrderedExpression, 0, len(criteria.Sortings())+2)

	if expression := filters.Expression(); expression != nil {
		wheres = append(wheres, expression)
	}

	score := ranking.Score()
	if score != nil {
		wheres = append(wheres, goqu.L(literalPositiveScore, score))
		columns = append(columns, goqu.MAX(score).As(aliasScore))
	}

	accessor := NewFieldAccessor(s.registry, s.dialect)

	for i, sorting := range criteria.Sortings() {
		resolved, resolveErr := accessor.Resolve(definition, sorting.Field, shopContext)
		if resolveErr != nil {
			return searchPlan{}, errors.Join(resolveErr, fmt.Errorf("sorting %d", i))
		}

		joins.AddJoin(resolved.Joins...)
		alias := fmt.Sprintf(aliasSortFmt, i)

		if sorting.Direction == entity.Descending {
			columns = append(columns, goqu.MAX(resolved.Column).As(alias))
			orders = append(orders, goqu.I(alias).Desc())

			continue
		}

		columns = append(columns, goqu.MIN(resolved.Column).As(alias))
		orders = append(orders, goqu.I(alias).Asc())
	}

	if score != nil {
		orders = append(orders, goqu.I(aliasScore).Desc())
	}

	orders = append(orders, idColumn.Asc())

	builder := s.dialect.builder()

	ids := joins.applyJoins(builder.From(goqu.T(definition.Name())).Select(columns...)).
		Where(wheres...).
		GroupBy(idColumn).
		Order(orders...).
		Prepared(true)

	if criteria.Limit() > 0 {
		ids = ids.Limit(uint(criteria.Limit()))
	}

	if criteria.Offset() > 0 {
		ids = ids.Offset(uint(criteria.Offset()))
	}

	total := joins.applyJoins(builder.From(goqu.T(definition.Name())).Select(goqu.COUNT(idColumn.Distinct()).As(aliasTotal))).
		Where(wheres...).
		Prepared(true)

	return searchPlan{ids: ids, total: total, columns: len(columns), scored: score != nil}, nil
}

func (s *Store) queryIDs(ctx context.Context, plan searchPlan) ([]uuid.UUID, map[uuid.UUID]float64, error) {
	sqlQuery, args, err := plan.ids.ToSQL()
	if err != nil {
		s.logError(ctx, logMsgBuildQueryFailed, err)
		return nil, nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	rows, _, err := s.executeQuery(ctx, operationSearchIDs, sqlQuery, args)
	if err != nil {
		return nil, nil, err
	}

	scanned, err := s.scanAll(ctx, rows, plan.columns)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]uuid.UUID, 0, len(scanned))

	var scores map[uuid.UUID]float64
	if plan.scored {
		scores = make(map[uuid.UUID]float64, len(scanned))
	}

	for _, values := range scanned {
		id, parseErr := entity.ParseUUID(values[0])
		if parseErr != nil {
			return nil, nil, errors.Join(ErrScanningRowFailed, parseErr)
		}

		ids = append(ids, id)

		if plan.scored {
			score, _ := toFloat64(unwrapValuer(values[1]))
			scores[id] = score
		}
	}

	return ids, scores, nil
}

func (s *Store) queryTotal(ctx context.Context, plan searchPlan) (int, error) {
	sqlQuery, args, err := plan.total.ToSQL()
	if err != nil {
		s.logError(ctx, logMsgBuildQueryFailed, err)
		return 0, errors.Join(ErrBuildingQueryFailed, err)
	}

	rows, _, err := s.executeQuery(ctx, operationSearchIDs, sqlQuery, args)
	if err != nil {
		return 0, err
	}

	scanned, err := s.scanAll(ctx, rows, 1)
	if err != nil {
		return 0, err
	}

	if len(scanned) == 0 {
		return 0, nil
	}

	total, ok := toInt64(unwrapValuer(scanned[0][0]))
	if !ok {
		return 0, errors.Join(ErrScanningRowFailed, fmt.Errorf("total of type %T", scanned[0][0]))
	}

	return int(total), nil
}

// ReadRows reads the rows with the given ids, in the order of the ids. Ids without a row are skipped.
//
// Many-to-one associations flagged to load in basic reads are joined and nested as entity.Row,
// or nil if the foreign key is null. Translated fields are read in the context's language,
// falling back to the fallback language.
func (s *Store) ReadRows(ctx context.Context, definition *entity.Definition, ids []uuid.UUID) (entity.Rows, error) {
	primaryKey, err := uuidPrimaryKey(definition)
	if err != nil {
		return nil, err
	}

	rows, err := s.readRows(ctx, definition, primaryKey.StorageName(), ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]entity.Row, len(rows))
	for _, row := range rows {
		if id, ok := row[primaryKey.PropertyName()].(uuid.UUID); ok {
			byID[id] = row
		}
	}

	ordered := make(entity.Rows, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			ordered = append(ordered, row)
		}
	}

	return ordered, nil
}

// ReadRowsByForeignKey reads the rows whose foreign key column contains one of the ids,
// e.g. the children of one-to-many associations.
func (s *Store) ReadRowsByForeignKey(
	ctx context.Context,
	definition *entity.Definition,
	storageName string,
	ids []uuid.UUID,
) (entity.Rows, error) {

	if _, ok := definition.Fields().GetByStorageName(storageName); !ok {
		return nil, errors.Join(entity.ErrUnknownField, fmt.Errorf("column %q of %q", storageName, definition.Name()))
	}

	return s.readRows(ctx, definition, storageName, ids)
}

func (s *Store) readRows(
	ctx context.Context,
	definition *entity.Definition,
	whereColumn string,
	ids []uuid.UUID,
) (entity.Rows, error) {

	if len(ids) == 0 {
		return entity.Rows{}, nil
	}

	observer, ctx := s.observe(ctx, operationRead, definition.Name())

	sqlQuery, args, plan, err := s.buildReadQuery(definition, whereColumn, ids, entity.ShopContextFrom(ctx))
	if err != nil {
		s.logError(ctx, logMsgBuildQueryFailed, err, logAttrEntity, definition.Name())
		observer.finishError(errorTypeBuildQuery)

		return nil, err
	}

	dbRows, _, err := s.executeQuery(ctx, operationRead, sqlQuery, args)
	if err != nil {
		observer.finishError(errorTypeDatabase)
		return nil, err
	}

	scanned, err := s.scanAll(ctx, dbRows, len(plan.columns))
	if err != nil {
		observer.finishError(errorTypeScan)
		return nil, err
	}

	rows := make(entity.Rows, 0, len(scanned))

	for _, values := range scanned {
		row, rowErr := plan.toRow(values)
		if rowErr != nil {
			s.logError(ctx, logMsgScanRowFailed, rowErr, logAttrEntity, definition.Name())
			observer.finishError(errorTypeScan)

			return nil, errors.Join(ErrScanningRowFailed, rowErr)
		}

		rows = append(rows, row)
	}

	s.logOperation(ctx, logMsgRowsRead, logAttrEntity, definition.Name(), logAttrRowCount, len(rows))
	observer.finishSuccess(len(rows))

	return rows, nil
}

func (s *Store) buildReadQuery(
	definition *entity.Definition,
	whereColumn string,
	ids []uuid.UUID,
	shopContext entity.ShopContext,
) (string, []any, readPlan, error) {

	plan, err := s.buildReadPlan(definition, shopContext)
	if err != nil {
		return "", nil, readPlan{}, err
	}

	primaryKey, err := uuidPrimaryKey(definition)
	if err != nil {
		return "", nil, readPlan{}, err
	}

	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, s.dialect.uuidValue(id))
	}

	root := goqu.T(definition.Name())

	sqlQuery, args, err := plan.joins.applyJoins(s.dialect.builder().From(root).Select(plan.columns...)).
		Where(root.Col(whereColumn).In(values)).
		Order(root.Col(primaryKey.StorageName()).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, readPlan{}, errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, args, plan, nil
}

// buildReadPlan selects the storage and translated fields of definition and of its many-to-one
// associations which load in basic reads. Associations are joined one level deep.
func (s *Store) buildReadPlan(definition *entity.Definition, shopContext entity.ShopContext) (readPlan, error) {
	accessor := NewFieldAccessor(s.registry, s.dialect)
	plan := readPlan{joins: NewParseResult(), associations: make(map[string]string)}
	eager := make([]*entity.ManyToOneAssociationField, 0)

	addPath := func(association string, field entity.Field, path string) error {
		resolved, err := accessor.Resolve(definition, path, shopContext)
		if err != nil {
			return err
		}

		plan.joins.AddJoin(resolved.Joins...)
		plan.columns = append(plan.columns, resolved.Column)
		plan.slots = append(plan.slots, readSlot{association: association, field: field})

		return nil
	}

	for _, field := range definition.Fields().Elements() {
		switch f := field.(type) {
		case *entity.ManyToOneAssociationField:
			if f.LoadInBasic() {
				eager = append(eager, f)
			}
		case entity.AssociationField:
			continue
		case *entity.TranslatedField, entity.StorageField:
			if err := addPath("", f, definition.Name()+"."+f.PropertyName()); err != nil {
				return readPlan{}, err
			}
		}
	}

	for _, association := range eager {
		reference, err := s.registry.Get(association.ReferenceEntity())
		if err != nil {
			return readPlan{}, err
		}

		referenceKey, err := uuidPrimaryKey(reference)
		if err != nil {
			return readPlan{}, err
		}

		plan.associations[association.PropertyName()] = referenceKey.PropertyName()

		for _, field := range reference.Fields().Elements() {
			if _, isAssociation := field.(entity.AssociationField); isAssociation {
				continue
			}

			path := definition.Name() + "." + association.PropertyName() + "." + field.PropertyName()
			if err := addPath(association.PropertyName(), field, path); err != nil {
				return readPlan{}, err
			}
		}
	}

	return plan, nil
}

// toRow turns scanned values into a normalized row with nested association rows.
func (p readPlan) toRow(values []any) (entity.Row, error) {
	row := make(entity.Row, len(values))
	nested := make(map[string]entity.Row, len(p.associations))

	for association := range p.associations {
		nested[association] = entity.Row{}
	}

	for i, slot := range p.slots {
		value, err := normalizeValue(slot.field, values[i])
		if err != nil {
			return nil, errors.Join(err, fmt.Errorf("property %q", slot.field.PropertyName()))
		}

		if slot.association == "" {
			row[slot.field.PropertyName()] = value
			continue
		}

		nested[slot.association][slot.field.PropertyName()] = value
	}

	for association, keyProperty := range p.associations {
		if nested[association][keyProperty] == nil {
			row[association] = nil
			continue
		}

		row[association] = nested[association]
	}

	return row, nil
}

// uuidPrimaryKey returns the single uuid primary key of definition.
func uuidPrimaryKey(definition *entity.Definition) (entity.StorageField, error) {
	primaryKeys := definition.PrimaryKeys()
	if len(primaryKeys) != 1 || !entity.IsUUIDField(primaryKeys[0]) {
		return nil, errors.Join(ErrNoUUIDPrimaryKey, fmt.Errorf("entity %q", definition.Name()))
	}

	return primaryKeys[0], nil
}

// searchKey returns the column ids are searched by. Translations are keyed by parent and
// language, their searches return the ids of the parent rows.
func searchKey(definition *entity.Definition) (entity.StorageField, error) {
	if !definition.IsTranslation() {
		return uuidPrimaryKey(definition)
	}

	for _, field := range definition.PrimaryKeys() {
		if fk, ok := field.(*entity.FkField); ok && fk.ReferenceEntity() == definition.ParentDefinition() {
			return fk, nil
		}
	}

	return nil, errors.Join(ErrNoUUIDPrimaryKey, fmt.Errorf("translation %q", definition.Name()))
}

func unwrapValuer(raw any) any {
	if valuer, ok := raw.(driver.Valuer); ok {
		if value, err := valuer.Value(); err == nil {
			return value
		}
	}

	return raw
}

func errorTypeOf(err error) string {
	switch {
	case errors.Is(err, ErrBuildingQueryFailed):
		return errorTypeBuildQuery
	case errors.Is(err, ErrScanningRowFailed):
		return errorTypeScan
	default:
		return errorTypeDatabase
	}
}
