package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/mesh-intelligence/modelcore/pkg/properties"
)

// Save replaces the stored model with the live elements of m and persists
// the JSONL files. Creation times of elements already stored are kept.
func (b *Backend) Save(m *properties.Model) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return detached()
	}

	created, err := b.createdAt()
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := b.db.Begin()
	if err != nil {
		return storeError("STORE_SAVE").Wrapf(err, "beginning save transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM element_values"); err != nil {
		return storeError("STORE_SAVE").Wrapf(err, "clearing element values")
	}
	if _, err := tx.Exec("DELETE FROM elements"); err != nil {
		return storeError("STORE_SAVE").Wrapf(err, "clearing elements")
	}

	insertElement, err := tx.Prepare("INSERT INTO elements (element_id, class, created_at) VALUES (?, ?, ?)")
	if err != nil {
		return storeError("STORE_SAVE").Wrap(err)
	}
	defer insertElement.Close()
	insertValue, err := tx.Prepare(`INSERT INTO element_values (element_id, property, ordinal, value_type, value)
VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return storeError("STORE_SAVE").Wrap(err)
	}
	defer insertValue.Close()

	elements := m.Elements()
	for _, e := range elements {
		at, ok := created[e.ID()]
		if !ok {
			at = now
		}
		if _, err := insertElement.Exec(e.ID(), e.Class().Name(), at); err != nil {
			return storeError("STORE_SAVE").With("element", e.String()).Wrapf(err, "inserting element")
		}
	}
	for _, e := range elements {
		if err := saveValues(insertValue, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return storeError("STORE_SAVE").Wrapf(err, "committing save transaction")
	}
	if err := b.persistJSONL(); err != nil {
		return storeError("STORE_PERSIST").Wrap(err)
	}
	return nil
}

func saveValues(stmt *sql.Stmt, e *properties.Element) error {
	ordinals := make(map[string]int)
	var saveErr error
	for _, p := range e.Class().Properties() {
		p.Save(e, func(name string, value any) {
			if saveErr != nil {
				return
			}
			valueType, text, err := encodeValue(value)
			if err != nil {
				saveErr = storeError("STORE_SAVE").With("element", e.String()).With("property", name).Wrap(err)
				return
			}
			ordinal := ordinals[name]
			ordinals[name]++
			if _, err := stmt.Exec(e.ID(), name, ordinal, valueType, text); err != nil {
				saveErr = storeError("STORE_SAVE").With("element", e.String()).With("property", name).
					Wrapf(err, "inserting value")
			}
		})
	}
	return saveErr
}

func encodeValue(value any) (string, string, error) {
	switch v := value.(type) {
	case string:
		return valueString, v, nil
	case int:
		return valueInt, strconv.Itoa(v), nil
	case *properties.Element:
		return valueRef, v.ID(), nil
	}
	return "", "", fmt.Errorf("unsupported value %T", value)
}

func (b *Backend) createdAt() (map[string]string, error) {
	records, err := b.queryElements()
	if err != nil {
		return nil, storeError("STORE_QUERY").Wrap(err)
	}
	out := make(map[string]string, len(records))
	for _, rec := range records {
		out[rec.ElementID] = rec.CreatedAt
	}
	return out, nil
}

// Load recreates the stored elements inside m and replays their values
// through the property load hooks with events blocked, then runs Postload.
// Elements of unknown classes, values of unknown properties, dangling
// references, and values a property refuses are skipped with a warning.
func (b *Backend) Load(m *properties.Model) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return detached()
	}

	records, err := b.queryElements()
	if err != nil {
		return storeError("STORE_QUERY").Wrap(err)
	}
	values, err := b.queryValues()
	if err != nil {
		return storeError("STORE_QUERY").Wrap(err)
	}

	restore := m.BlockEvents()
	defer restore()

	for _, rec := range records {
		class, ok := m.Schema().Lookup(rec.Class)
		if !ok {
			b.logger.Warn("skipping element of unknown class", "element", rec.ElementID, "class", rec.Class)
			continue
		}
		if _, err := m.CreateWithID(class, rec.ElementID); err != nil {
			return storeError("STORE_LOAD").With("element", rec.ElementID).Wrap(err)
		}
	}

	for _, rec := range values {
		b.loadValue(m, rec)
	}
	m.Postload()
	return nil
}

func (b *Backend) loadValue(m *properties.Model, rec elementValueJSON) {
	log := b.logger.With("element", rec.ElementID, "property", rec.Property)
	e, err := m.Lookup(rec.ElementID)
	if err != nil {
		log.Warn("skipping value of unknown element")
		return
	}
	p, ok := e.Class().Property(rec.Property)
	if !ok {
		log.Warn("skipping value of unknown property", "class", e.Class().Name())
		return
	}
	var value any
	switch rec.ValueType {
	case valueString:
		value = rec.Value
	case valueInt:
		if n, err := strconv.Atoi(rec.Value); err == nil {
			value = n
		} else {
			value = rec.Value
		}
	case valueRef:
		target, err := m.Lookup(rec.Value)
		if err != nil {
			log.Warn("skipping dangling reference", "target", rec.Value)
			return
		}
		value = target
	default:
		log.Warn("skipping value of unknown type", "value_type", rec.ValueType)
		return
	}
	if err := p.Load(e, value); err != nil {
		log.Warn("property refused stored value", "error", err)
	}
}
