package conflict

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/utkarsh5026/gosvn/pkg/wcdb"
)

// wireVersion/wireSkeleton are the JSON-on-disk representation of a
// Skeleton, stored as actual_node.conflict_data. Kept distinct from
// Skeleton so the wire format doesn't leak the unexported stampedOp
// bookkeeping field.
type wireVersion struct {
	ReposRootURL string    `json:"repos_root_url"`
	ReposUUID    string    `json:"repos_uuid"`
	PathInRepos  string    `json:"path_in_repos"`
	Revision     int64     `json:"revision"`
	NodeKind     wcdb.Kind `json:"node_kind"`
}

type wireSkeleton struct {
	Operation       Operation      `json:"operation"`
	LocalChange     LocalChange    `json:"local_change"`
	IncomingChange  IncomingChange `json:"incoming_change"`
	TreeConflicted  bool           `json:"tree_conflicted"`
	Old             *wireVersion   `json:"old,omitempty"`
	New             *wireVersion   `json:"new,omitempty"`
	OriginalVersion *wireVersion   `json:"original_version,omitempty"`
	StampedOp       Operation      `json:"stamped_op,omitempty"`
}

func toWireVersion(v *Version) *wireVersion {
	if v == nil {
		return nil
	}
	return &wireVersion{
		ReposRootURL: v.ReposRootURL,
		ReposUUID:    v.ReposUUID,
		PathInRepos:  v.PathInRepos,
		Revision:     v.Revision,
		NodeKind:     v.NodeKind,
	}
}

func fromWireVersion(v *wireVersion) *Version {
	if v == nil {
		return nil
	}
	return &Version{
		ReposRootURL: v.ReposRootURL,
		ReposUUID:    v.ReposUUID,
		PathInRepos:  v.PathInRepos,
		Revision:     v.Revision,
		NodeKind:     v.NodeKind,
	}
}

// Read loads the conflict skeleton attached to victimRelpath, or nil if
// the victim carries no conflict.
func Read(ctx context.Context, tx *wcdb.Tx, victimRelpath wcdb.Relpath) (*Skeleton, error) {
	row := tx.QueryRowRaw(ctx, `
		SELECT conflict_data FROM actual_node
		WHERE wc_id = ? AND local_relpath = ?`,
		tx.WCRoot().ID, string(victimRelpath))

	var data []byte
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("read conflict: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var wire wireSkeleton
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("read conflict: decode: %w", err)
	}

	return &Skeleton{
		VictimRelpath:   victimRelpath,
		Operation:       wire.Operation,
		LocalChange:     wire.LocalChange,
		IncomingChange:  wire.IncomingChange,
		TreeConflicted:  wire.TreeConflicted,
		Old:             fromWireVersion(wire.Old),
		New:             fromWireVersion(wire.New),
		OriginalVersion: fromWireVersion(wire.OriginalVersion),
		stampedOp:       wire.StampedOp,
	}, nil
}

// Write persists skel back to the actual_node table.
func Write(ctx context.Context, tx *wcdb.Tx, skel *Skeleton) error {
	wire := wireSkeleton{
		Operation:       skel.Operation,
		LocalChange:     skel.LocalChange,
		IncomingChange:  skel.IncomingChange,
		TreeConflicted:  skel.TreeConflicted,
		Old:             toWireVersion(skel.Old),
		New:             toWireVersion(skel.New),
		OriginalVersion: toWireVersion(skel.OriginalVersion),
		StampedOp:       skel.stampedOp,
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("write conflict: encode: %w", err)
	}

	_, err = tx.ExecRaw(ctx, `
		INSERT INTO actual_node (wc_id, local_relpath, parent_relpath, conflict_data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (wc_id, local_relpath) DO UPDATE SET conflict_data = excluded.conflict_data`,
		tx.WCRoot().ID, string(skel.VictimRelpath), string(skel.VictimRelpath.Dir()), data)
	if err != nil {
		return fmt.Errorf("write conflict: %w", err)
	}
	return nil
}

// ListVictims returns every relpath carrying a non-empty conflict_data
// blob; it backs the "gosvn status" conflict listing.
func ListVictims(ctx context.Context, tx *wcdb.Tx) ([]wcdb.Relpath, error) {
	rows, err := tx.QueryRaw(ctx, `
		SELECT local_relpath FROM actual_node
		WHERE wc_id = ? AND conflict_data IS NOT NULL AND length(conflict_data) > 0`,
		tx.WCRoot().ID)
	if err != nil {
		return nil, fmt.Errorf("list victims: %w", err)
	}
	defer rows.Close()

	var out []wcdb.Relpath
	for rows.Next() {
		var relpath string
		if err := rows.Scan(&relpath); err != nil {
			return nil, fmt.Errorf("list victims: %w", err)
		}
		out = append(out, wcdb.Relpath(relpath))
	}
	return out, rows.Err()
}
