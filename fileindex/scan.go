package fileindex

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nrupatunga/fff.nvim/pathutil"
)

// IgnoreChecker is the opaque predicate the scan and watcher both consult
// before admitting a path (§4.1, §9). Satisfied by *ignore.Matcher.
type IgnoreChecker interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

type scannedFile struct {
	absPath  string
	relPath  string
	name     string
	ext      string
	size     int64
	modified time.Time
	symlink  bool
}

// walk performs the parallel directory walk of §4.1: a fixed worker pool
// drains a directory work queue, each worker enumerates one directory's
// entries, filters hidden/ignored entries, stats survivors, and appends
// to a small thread-local buffer that is flushed to the shared result
// vector under a short critical section.
func (ix *Index) walk(ctx context.Context) ([]scannedFile, error) {
	if _, err := os.Stat(ix.base); err != nil {
		return nil, err
	}

	var (
		resultsMu sync.Mutex
		results   []scannedFile
		wg        sync.WaitGroup
		permErrMu sync.Mutex
		permErrs  int
	)

	dirCh := make(chan string)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	workers := ix.maxThreads
	if workers <= 0 {
		workers = 4
	}

	worker := func() {
		for {
			select {
			case dir, ok := <-dirCh:
				if !ok {
					return
				}
				ix.walkOneDir(ctx, dir, &resultsMu, &results, &wg, dirCh, &permErrMu, &permErrs)
				wg.Done()
			case <-done:
				return
			}
		}
	}

	for i := 0; i < workers; i++ {
		go worker()
	}

	wg.Add(1)
	go func() { dirCh <- ix.base }()

	<-done
	close(dirCh)

	if permErrs > 0 {
		ix.logger.Debug("scan completed with skipped entries", "skipped", permErrs)
	}
	return results, nil
}

func (ix *Index) walkOneDir(
	ctx context.Context,
	dir string,
	resultsMu *sync.Mutex,
	results *[]scannedFile,
	wg *sync.WaitGroup,
	dirCh chan string,
	permErrMu *sync.Mutex,
	permErrs *int,
) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		permErrMu.Lock()
		*permErrs++
		permErrMu.Unlock()
		ix.logger.Debug("skipping unreadable directory", "path", dir, "error", err)
		return
	}

	localBuffer := make([]scannedFile, 0, len(entries))

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if ix.ignore != nil && ix.ignore.ShouldIgnoreDir(path) {
				continue
			}
			wg.Add(1)
			go func(p string) { dirCh <- p }(path)
			continue
		}

		if ix.ignore != nil && ix.ignore.ShouldIgnore(path) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			permErrMu.Lock()
			*permErrs++
			permErrMu.Unlock()
			ix.logger.Debug("skipping unreadable entry", "path", path, "error", err)
			continue
		}

		isSymlink := info.Mode()&os.ModeSymlink != 0
		relPath := pathutil.Relative(ix.base, path)
		localBuffer = append(localBuffer, scannedFile{
			absPath:  path,
			relPath:  relPath,
			name:     entry.Name(),
			ext:      pathutil.Extension(entry.Name()),
			size:     info.Size(),
			modified: info.ModTime(),
			symlink:  isSymlink,
		})
	}

	if len(localBuffer) == 0 {
		return
	}
	resultsMu.Lock()
	*results = append(*results, localBuffer...)
	resultsMu.Unlock()
}
