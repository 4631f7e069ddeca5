package sqlite

// Schema DDL. The tables are a query cache rebuilt from the JSONL files on
// every Attach.
const (
	createElements = `CREATE TABLE elements (
    element_id TEXT PRIMARY KEY,
    class TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createElementValues = `CREATE TABLE element_values (
    element_id TEXT NOT NULL,
    property TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    value_type TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (element_id, property, ordinal),
    FOREIGN KEY (element_id) REFERENCES elements(element_id) ON DELETE CASCADE
);`
)

// Index DDL for common queries.
const (
	idxElementsClass        = `CREATE INDEX idx_elements_class ON elements(class);`
	idxElementValuesElement = `CREATE INDEX idx_element_values_element ON element_values(element_id);`
	idxElementValuesRef     = `CREATE INDEX idx_element_values_ref ON element_values(value_type, value);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createElements,
	createElementValues,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxElementsClass,
	idxElementValuesElement,
	idxElementValuesRef,
}

// Value types stored in element_values.value_type.
const (
	valueString = "string"
	valueInt    = "int"
	valueRef    = "ref"
)

// JSONL file names in DataDir.
const (
	elementsJSONL      = "elements.jsonl"
	elementValuesJSONL = "element_values.jsonl"
	databaseFile       = "model.db"
)
