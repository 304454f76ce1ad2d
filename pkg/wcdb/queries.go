package wcdb

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// SelectNodeInfo returns every row for (wc_id, relpath), ordered by
// op_depth ascending; the lowest row is always BASE.
func (t *Tx) SelectNodeInfo(ctx context.Context, relpath Relpath) ([]NodeRow, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT op_depth, kind, revision, repos_relpath, repos_root_url,
		       repos_uuid, checksum, moved_to, parent_relpath
		FROM nodes
		WHERE wc_id = ? AND local_relpath = ?
		ORDER BY op_depth ASC`, t.wcroot.ID, string(relpath))
	if err != nil {
		return nil, fmt.Errorf("select_node_info: %w", err)
	}
	defer rows.Close()

	var out []NodeRow
	for rows.Next() {
		n, err := scanNodeRow(rows, t.wcroot.ID, relpath)
		if err != nil {
			return nil, fmt.Errorf("select_node_info: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// SelectWorkingNode returns every row for (wc_id, relpath) with
// op_depth > 0, used for shadowing checks.
func (t *Tx) SelectWorkingNode(ctx context.Context, relpath Relpath) ([]NodeRow, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT op_depth, kind, revision, repos_relpath, repos_root_url,
		       repos_uuid, checksum, moved_to, parent_relpath
		FROM nodes
		WHERE wc_id = ? AND local_relpath = ? AND op_depth > 0
		ORDER BY op_depth ASC`, t.wcroot.ID, string(relpath))
	if err != nil {
		return nil, fmt.Errorf("select_working_node: %w", err)
	}
	defer rows.Close()

	var out []NodeRow
	for rows.Next() {
		n, err := scanNodeRow(rows, t.wcroot.ID, relpath)
		if err != nil {
			return nil, fmt.Errorf("select_working_node: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// IsShadowedAbove reports whether relpath is shadowed at a higher
// op_depth than expectedOpDepth: a row with the same relpath exists
// at op_depth > d.
func (t *Tx) IsShadowedAbove(ctx context.Context, relpath Relpath, expectedOpDepth int) (bool, error) {
	rows, err := t.SelectWorkingNode(ctx, relpath)
	if err != nil {
		return false, err
	}
	for _, r := range rows {
		if r.OpDepth > expectedOpDepth {
			return true, nil
		}
	}
	return false, nil
}

// DepthGetInfo returns the node row at exactly opDepth, failing if
// absent.
func (t *Tx) DepthGetInfo(ctx context.Context, relpath Relpath, opDepth int) (DepthInfo, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT kind, revision, repos_relpath, checksum
		FROM nodes
		WHERE wc_id = ? AND local_relpath = ? AND op_depth = ?`,
		t.wcroot.ID, string(relpath), opDepth)

	var info DepthInfo
	var kind string
	var revision sql.NullInt64
	var reposRelpath, checksum sql.NullString
	if err := row.Scan(&kind, &revision, &reposRelpath, &checksum); err != nil {
		if err == sql.ErrNoRows {
			return DepthInfo{}, ErrNodeNotFound("depth_get_info", string(relpath), opDepth)
		}
		return DepthInfo{}, fmt.Errorf("depth_get_info: %w", err)
	}
	info.Kind = Kind(kind)
	info.Revision = nullInt(revision)
	info.ReposRelpath = reposRelpath.String
	info.Checksum = checksum.String
	return info, nil
}

// BaseGetInfo reads the op_depth 0 (BASE) layer.
func (t *Tx) BaseGetInfo(ctx context.Context, relpath Relpath) (BaseInfo, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT kind, revision, repos_relpath, repos_root_url, repos_uuid,
		       checksum, moved_to
		FROM nodes
		WHERE wc_id = ? AND local_relpath = ? AND op_depth = 0`,
		t.wcroot.ID, string(relpath))

	var info BaseInfo
	var kind string
	var revision sql.NullInt64
	var reposRelpath, reposRootURL, reposUUID, checksum, movedTo sql.NullString
	if err := row.Scan(&kind, &revision, &reposRelpath, &reposRootURL, &reposUUID, &checksum, &movedTo); err != nil {
		if err == sql.ErrNoRows {
			return BaseInfo{}, ErrNodeNotFound("base_get_info", string(relpath), 0)
		}
		return BaseInfo{}, fmt.Errorf("base_get_info: %w", err)
	}
	info.Kind = Kind(kind)
	info.Revision = nullInt(revision)
	info.ReposRelpath = reposRelpath.String
	info.ReposRootURL = reposRootURL.String
	info.ReposUUID = reposUUID.String
	info.Checksum = checksum.String
	info.MovedTo = Relpath(movedTo.String)
	return info, nil
}

// BaseGetChildren returns the ordered list of child names at op_depth 0
// below parentRelpath. Order is lexical, giving the driver a
// deterministic walk order.
func (t *Tx) BaseGetChildren(ctx context.Context, parentRelpath Relpath) ([]string, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT local_relpath
		FROM nodes
		WHERE wc_id = ? AND parent_relpath = ? AND op_depth = 0`,
		t.wcroot.ID, string(parentRelpath))
	if err != nil {
		return nil, fmt.Errorf("base_get_children: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var childRelpath string
		if err := rows.Scan(&childRelpath); err != nil {
			return nil, fmt.Errorf("base_get_children: %w", err)
		}
		names = append(names, Relpath(childRelpath).Base())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// ScanDeletion walks up from relpath to the nearest ancestor-or-self
// whose BASE row carries a moved_to pointer. MoveOpRoot is that
// pointer, the destination root of the move; MovedTo is that
// destination extended by relpath's path below the ancestor. With no
// such row, it returns a zero Deletion (Deleted false).
func (t *Tx) ScanDeletion(ctx context.Context, relpath Relpath) (Deletion, error) {
	cur := relpath
	for {
		info, err := t.BaseGetInfo(ctx, cur)
		if err != nil {
			if IsNotFound(err) {
				if cur.Depth() == 0 {
					return Deletion{}, nil
				}
				cur = cur.Dir()
				continue
			}
			return Deletion{}, err
		}
		if info.MovedTo == "" {
			if cur.Depth() == 0 {
				return Deletion{}, nil
			}
			cur = cur.Dir()
			continue
		}

		suffix, ok := relpath.SkipAncestor(cur)
		if !ok {
			return Deletion{}, nil
		}
		movedTo := info.MovedTo
		if suffix != "" {
			movedTo = movedTo.Join(string(suffix))
		}
		return Deletion{MovedTo: movedTo, MoveOpRoot: info.MovedTo, Deleted: true}, nil
	}
}

// DeleteWorkingOpDepth removes every row rooted at relpath (relpath
// itself and all descendants) that carries exactly opDepth.
func (t *Tx) DeleteWorkingOpDepth(ctx context.Context, relpath Relpath, opDepth int) error {
	_, err := t.tx.ExecContext(ctx, `
		DELETE FROM nodes
		WHERE wc_id = ? AND op_depth = ?
		  AND (local_relpath = ? OR local_relpath LIKE ? ESCAPE '\')`,
		t.wcroot.ID, opDepth, string(relpath), likePrefix(relpath))
	if err != nil {
		return fmt.Errorf("delete_working_op_depth: %w", err)
	}
	return nil
}

// SelectLocalRelpathOpDepth returns the ordered, ancestor-first list of
// relpath and its descendants that carry exactly opDepth. Ancestor-first
// ordering lets CopyNodeMove rely on the parent row already existing
// (by construction; CopyNodeMove itself does not require it since it
// writes parent_relpath directly, but ancestor-first keeps the replay
// order intuitive to a reader).
func (t *Tx) SelectLocalRelpathOpDepth(ctx context.Context, relpath Relpath, opDepth int) ([]Relpath, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT local_relpath
		FROM nodes
		WHERE wc_id = ? AND op_depth = ?
		  AND (local_relpath = ? OR local_relpath LIKE ? ESCAPE '\')`,
		t.wcroot.ID, opDepth, string(relpath), likePrefix(relpath))
	if err != nil {
		return nil, fmt.Errorf("select_local_relpath_op_depth: %w", err)
	}
	defer rows.Close()

	var out []Relpath
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("select_local_relpath_op_depth: %w", err)
		}
		out = append(out, Relpath(s))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Depth() < out[j].Depth() })
	return out, nil
}

// CopyNodeMove inserts a copy of the row at (srcRelpath, srcOpDepth)
// into (dstRelpath, dstOpDepth), rewriting parent_relpath to
// dstParentRelpath.
func (t *Tx) CopyNodeMove(ctx context.Context, srcRelpath Relpath, srcOpDepth int, dstRelpath Relpath, dstOpDepth int, dstParentRelpath Relpath) error {
	src, err := t.DepthGetInfoFull(ctx, srcRelpath, srcOpDepth)
	if err != nil {
		return fmt.Errorf("copy_node_move: read source: %w", err)
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO nodes (wc_id, local_relpath, op_depth, parent_relpath,
		                    kind, revision, repos_relpath, repos_root_url,
		                    repos_uuid, checksum, moved_to)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT (wc_id, local_relpath, op_depth) DO UPDATE SET
		  parent_relpath = excluded.parent_relpath,
		  kind = excluded.kind,
		  revision = excluded.revision,
		  repos_relpath = excluded.repos_relpath,
		  repos_root_url = excluded.repos_root_url,
		  repos_uuid = excluded.repos_uuid,
		  checksum = excluded.checksum,
		  moved_to = NULL`,
		t.wcroot.ID, string(dstRelpath), dstOpDepth, string(dstParentRelpath),
		string(src.Kind), src.Revision, src.ReposRelpath, src.ReposRootURL,
		src.ReposUUID, nullableString(src.Checksum))
	if err != nil {
		return fmt.Errorf("copy_node_move: %w", err)
	}
	return nil
}

// DepthGetInfoFull is DepthGetInfo extended with the repository
// coordinates CopyNodeMove needs to replicate a row in full; only the
// copy path calls it, so the DepthGetInfo signature stays narrow.
func (t *Tx) DepthGetInfoFull(ctx context.Context, relpath Relpath, opDepth int) (NodeRow, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT kind, revision, repos_relpath, repos_root_url, repos_uuid, checksum, moved_to
		FROM nodes
		WHERE wc_id = ? AND local_relpath = ? AND op_depth = ?`,
		t.wcroot.ID, string(relpath), opDepth)

	var n NodeRow
	n.WCID = t.wcroot.ID
	n.Relpath = relpath
	n.OpDepth = opDepth
	var kind string
	var revision sql.NullInt64
	var reposRelpath, reposRootURL, reposUUID, checksum, movedTo sql.NullString
	if err := row.Scan(&kind, &revision, &reposRelpath, &reposRootURL, &reposUUID, &checksum, &movedTo); err != nil {
		if err == sql.ErrNoRows {
			return NodeRow{}, ErrNodeNotFound("depth_get_info_full", string(relpath), opDepth)
		}
		return NodeRow{}, fmt.Errorf("depth_get_info_full: %w", err)
	}
	n.Kind = Kind(kind)
	n.Revision = nullInt(revision)
	n.ReposRelpath = reposRelpath.String
	n.ReposRootURL = reposRootURL.String
	n.ReposUUID = reposUUID.String
	n.Checksum = checksum.String
	n.MovedTo = Relpath(movedTo.String)
	return n, nil
}

// UpdateBaseNode rewrites the BASE (op_depth 0) layer's revision and
// checksum at relpath, the pkg/client update-apply path's analogue of
// the update editor's close_file/close_dir bumping an entry's revision
// in place.
func (t *Tx) UpdateBaseNode(ctx context.Context, relpath Relpath, revision int64, checksum string) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE nodes SET revision = ?, checksum = ?
		WHERE wc_id = ? AND local_relpath = ? AND op_depth = 0`,
		revision, nullableString(checksum), t.wcroot.ID, string(relpath))
	if err != nil {
		return fmt.Errorf("update_base_node: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update_base_node: %w", err)
	}
	if n == 0 {
		return ErrNodeNotFound("update_base_node", string(relpath), 0)
	}
	return nil
}

// DeleteBaseNode removes the BASE row at relpath, the apply path's
// analogue of the update editor's delete_entry.
func (t *Tx) DeleteBaseNode(ctx context.Context, relpath Relpath) error {
	_, err := t.tx.ExecContext(ctx, `
		DELETE FROM nodes WHERE wc_id = ? AND local_relpath = ? AND op_depth = 0`,
		t.wcroot.ID, string(relpath))
	if err != nil {
		return fmt.Errorf("delete_base_node: %w", err)
	}
	return nil
}

// SetProperty stamps propname=propval on relpath in the properties
// table. An empty propval deletes the property instead, matching
// "propset --remove".
func (t *Tx) SetProperty(ctx context.Context, relpath Relpath, propname, propval string) error {
	if propval == "" {
		_, err := t.tx.ExecContext(ctx, `
			DELETE FROM properties WHERE wc_id = ? AND local_relpath = ? AND propname = ?`,
			t.wcroot.ID, string(relpath), propname)
		if err != nil {
			return fmt.Errorf("set_property: %w", err)
		}
		return nil
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO properties (wc_id, local_relpath, propname, propval)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (wc_id, local_relpath, propname) DO UPDATE SET propval = excluded.propval`,
		t.wcroot.ID, string(relpath), propname, propval)
	if err != nil {
		return fmt.Errorf("set_property: %w", err)
	}
	return nil
}

// GetProperty returns propname's value on relpath, and whether it is set.
func (t *Tx) GetProperty(ctx context.Context, relpath Relpath, propname string) (string, bool, error) {
	var propval string
	err := t.tx.QueryRowContext(ctx, `
		SELECT propval FROM properties WHERE wc_id = ? AND local_relpath = ? AND propname = ?`,
		t.wcroot.ID, string(relpath), propname).Scan(&propval)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get_property: %w", err)
	}
	return propval, true, nil
}

// InsertNode inserts one node row. Tests use it to seed the node graph
// and pkg/client's apply editor uses it for added nodes; the resolution
// core itself mutates nodes only through CopyNodeMove and
// DeleteWorkingOpDepth.
func (t *Tx) InsertNode(ctx context.Context, n NodeRow) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO nodes (wc_id, local_relpath, op_depth, parent_relpath,
		                    kind, revision, repos_relpath, repos_root_url,
		                    repos_uuid, checksum, moved_to)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.wcroot.ID, string(n.Relpath), n.OpDepth, string(n.ParentRelpath),
		string(n.Kind), n.Revision, n.ReposRelpath, n.ReposRootURL,
		n.ReposUUID, nullableString(n.Checksum), nullableString(string(n.MovedTo)))
	if err != nil {
		return fmt.Errorf("insert_node: %w", err)
	}
	return nil
}

func scanNodeRow(rows *sql.Rows, wcID int64, relpath Relpath) (NodeRow, error) {
	var n NodeRow
	n.WCID = wcID
	n.Relpath = relpath
	var kind string
	var revision sql.NullInt64
	var reposRelpath, reposRootURL, reposUUID, checksum, movedTo, parentRelpath sql.NullString
	if err := rows.Scan(&n.OpDepth, &kind, &revision, &reposRelpath, &reposRootURL,
		&reposUUID, &checksum, &movedTo, &parentRelpath); err != nil {
		return NodeRow{}, err
	}
	n.Kind = Kind(kind)
	n.Revision = nullInt(revision)
	n.ReposRelpath = reposRelpath.String
	n.ReposRootURL = reposRootURL.String
	n.ReposUUID = reposUUID.String
	n.Checksum = checksum.String
	n.MovedTo = Relpath(movedTo.String)
	n.ParentRelpath = Relpath(parentRelpath.String)
	return n, nil
}

func nullInt(n sql.NullInt64) int64 {
	if !n.Valid {
		return InvalidRevision
	}
	return n.Int64
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// likePrefix builds the LIKE pattern matching relpath and everything
// below it, escaping SQL LIKE metacharacters that could appear in a
// path segment.
func likePrefix(relpath Relpath) string {
	esc := func(s string) string {
		r := make([]byte, 0, len(s))
		for i := 0; i < len(s); i++ {
			c := s[i]
			if c == '\\' || c == '%' || c == '_' {
				r = append(r, '\\')
			}
			r = append(r, c)
		}
		return string(r)
	}
	return esc(string(relpath)) + "/%"
}
