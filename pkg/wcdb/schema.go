package wcdb

// schemaSQL creates the subset of the working-copy schema the core
// depends on. The lock table and the actual pristine byte store live
// elsewhere (pkg/pristine); this schema owns the node graph, the
// conflict skeleton blob, the property table, and the wcroot registry.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS wcroot (
  id INTEGER PRIMARY KEY,
  local_abspath TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS nodes (
  wc_id INTEGER NOT NULL,
  local_relpath TEXT NOT NULL,
  op_depth INTEGER NOT NULL,
  parent_relpath TEXT,
  kind TEXT NOT NULL,
  revision INTEGER,
  repos_relpath TEXT,
  repos_root_url TEXT,
  repos_uuid TEXT,
  checksum TEXT,
  moved_to TEXT,
  PRIMARY KEY (wc_id, local_relpath, op_depth)
);
CREATE INDEX IF NOT EXISTS nodes_parent ON nodes (wc_id, parent_relpath, op_depth);

CREATE TABLE IF NOT EXISTS actual_node (
  wc_id INTEGER NOT NULL,
  local_relpath TEXT NOT NULL,
  parent_relpath TEXT,
  conflict_data BLOB,
  PRIMARY KEY (wc_id, local_relpath)
);

CREATE TABLE IF NOT EXISTS properties (
  wc_id INTEGER NOT NULL,
  local_relpath TEXT NOT NULL,
  propname TEXT NOT NULL,
  propval TEXT,
  PRIMARY KEY (wc_id, local_relpath, propname)
);
`
