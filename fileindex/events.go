package fileindex

import (
	"os"
	"sort"

	"github.com/nrupatunga/fff.nvim/pathutil"
)

// EventKind is the filesystem event taxonomy consumed by ApplyEvent (§4.1).
type EventKind int

const (
	EventCreated EventKind = iota
	EventModified
	EventDeleted
	EventRenamed
)

// Event is one normalized filesystem change. For EventRenamed, Path is
// the new absolute path and OldPath is the previous one.
type Event struct {
	Kind    EventKind
	Path    string
	OldPath string
}

// ApplyEvent consumes one filesystem event and updates the in-memory
// index incrementally, without bumping the generation counter — only a
// full Rescan or Restart invalidates outstanding index_ids (§3, §4.1).
func (ix *Index) ApplyEvent(ev Event) error {
	switch ev.Kind {
	case EventCreated, EventModified:
		return ix.applyUpsert(ev.Path)
	case EventDeleted:
		return ix.applyRemove(ev.Path)
	case EventRenamed:
		return ix.applyRename(ev.OldPath, ev.Path)
	default:
		return nil
	}
}

func (ix *Index) applyUpsert(absPath string) error {
	if ix.ignore != nil && ix.ignore.ShouldIgnore(absPath) {
		return ix.applyRemove(absPath)
	}

	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		return ix.applyRemove(absPath)
	}

	isSymlink := info.Mode()&os.ModeSymlink != 0
	relPath := pathutil.Relative(ix.base, absPath)

	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	if id, ok := ix.pathToID[absPath]; ok {
		ix.byID[id].touchStat(info.Size(), info.ModTime(), isSymlink)
		ix.publishLocked()
		return nil
	}

	ix.nextID++
	id := ix.nextID
	rec := newRecord(id, absPath, relPath, pathutil.Name(absPath), pathutil.Extension(absPath), info.Size(), info.ModTime(), isSymlink)
	if ix.frecencyScorer != nil {
		rec.SetFrecencyScore(ix.frecencyScorer(absPath))
	}
	ix.pathToID[absPath] = id
	ix.byID[id] = rec
	ix.recordsList = append(ix.recordsList, rec)
	ix.publishLocked()
	return nil
}

func (ix *Index) applyRemove(absPath string) error {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	id, ok := ix.pathToID[absPath]
	if !ok {
		return nil
	}
	delete(ix.pathToID, absPath)
	delete(ix.byID, id)
	ix.tombstones[id] = struct{}{}

	newList := make([]*FileRecord, 0, len(ix.recordsList))
	for _, r := range ix.recordsList {
		if r.IndexID != id {
			newList = append(newList, r)
		}
	}
	ix.recordsList = newList
	ix.publishLocked()
	return nil
}

// applyRename preserves the record's IndexID across the rename since the
// underlying file identity has not changed, only its path — it replaces
// the FileRecord's immutable path fields by constructing a fresh record
// that carries the same id forward.
func (ix *Index) applyRename(oldAbsPath, newAbsPath string) error {
	if ix.ignore != nil && ix.ignore.ShouldIgnore(newAbsPath) {
		return ix.applyRemove(oldAbsPath)
	}

	info, err := os.Stat(newAbsPath)
	if err != nil || info.IsDir() {
		return ix.applyRemove(oldAbsPath)
	}

	isSymlink := info.Mode()&os.ModeSymlink != 0
	relPath := pathutil.Relative(ix.base, newAbsPath)

	ix.writeMu.Lock()

	id, ok := ix.pathToID[oldAbsPath]
	if !ok {
		// Unknown old path: treat as a plain create under the new path.
		ix.writeMu.Unlock()
		return ix.applyUpsert(newAbsPath)
	}
	defer ix.writeMu.Unlock()

	old := ix.byID[id]
	renamed := newRecord(id, newAbsPath, relPath, pathutil.Name(newAbsPath), pathutil.Extension(newAbsPath), info.Size(), info.ModTime(), isSymlink)
	if old != nil {
		renamed.gitStatus.Store(int32(GitStatusRenamed))
		renamed.frecencyScore.Store(old.frecencyScore.Load())
	}

	delete(ix.pathToID, oldAbsPath)
	ix.pathToID[newAbsPath] = id
	ix.byID[id] = renamed

	// Replace in a copy: the published Snapshot shares recordsList's array.
	newList := make([]*FileRecord, len(ix.recordsList))
	copy(newList, ix.recordsList)
	for i, r := range newList {
		if r.IndexID == id {
			newList[i] = renamed
			break
		}
	}
	ix.recordsList = newList
	ix.publishLocked()
	return nil
}

// publishLocked republishes the current recordsList as a new Snapshot at
// the unchanged generation. Must be called with writeMu held.
func (ix *Index) publishLocked() {
	sort.Slice(ix.recordsList, func(i, j int) bool { return ix.recordsList[i].IndexID < ix.recordsList[j].IndexID })
	ix.snapshot.Store(&Snapshot{Generation: ix.generation.Load(), Records: ix.recordsList})
}
