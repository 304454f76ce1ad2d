package conflict

import (
	"fmt"

	"github.com/utkarsh5026/gosvn/pkg/workqueue"
)

// CreateMarkers builds the deferred work item that writes conflict
// marker files for skel's victim. The three marker suffixes are
// ".mine" (the working copy's side), ".rOLD" (the merge base), and
// ".rNEW" (the incoming side).
func (s *Skeleton) CreateMarkers(mineData, oldData, newData []byte) workqueue.Item {
	return workqueue.Item{
		Kind:          workqueue.KindWriteMarkers,
		VictimAbspath: "", // filled in by the caller, which knows the wcroot abspath
		MarkerData: map[string][]byte{
			".mine": mineData,
			fmt.Sprintf(".r%d", s.oldRevision()): oldData,
			fmt.Sprintf(".r%d", s.newRevision()): newData,
		},
	}
}

func (s *Skeleton) oldRevision() int64 {
	if s.Old != nil {
		return s.Old.Revision
	}
	return 0
}

func (s *Skeleton) newRevision() int64 {
	if s.New != nil {
		return s.New.Revision
	}
	return 0
}
