package organizer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/chronicle"
)

// Folder names the organize pass sorts downloads into.
const (
	RawFolder          = "Chronicle Android Raw Data Downloads"
	SurveyFolder       = "Chronicle Android Survey Data Downloads"
	IOSSensorFolder    = "Chronicle iOS Sensor Data Downloads"
	PreprocessedFolder = "Chronicle Android Preprocessed Data Downloads"
	DiaryFolder        = "Chronicle Time Use Diary Data Downloads"
)

// dateToken matches the two-separator date embedded in output
// filenames, in either MM-DD-YYYY or MM.DD.YYYY form.
var dateToken = regexp.MustCompile(`\d{2}[.-]\d{2}[.-]\d{4}`)

// CorruptedFilenameError reports a filename whose date token matched
// the scan pattern but parsed as neither supported date format. This
// means the file was renamed while a run was in flight; archival
// aborts rather than guessing.
type CorruptedFilenameError struct {
	Path string
}

func (e *CorruptedFilenameError) Error() string {
	return fmt.Sprintf("organizer: file %s possibly altered while a run was active", e.Path)
}

// category is one row of the classification table. Keyword drives the
// fallback matcher when the pattern does not compile.
type category struct {
	pattern string
	keyword string
	folder  string
}

// categories lists the classification rules in the order the organize
// pass applies them.
var categories = []category{
	{pattern: `[\s\S]*(Raw)[\s\S]*\.csv`, keyword: "raw", folder: RawFolder},
	{pattern: `[\s\S]*(Survey)[\s\S]*\.csv`, keyword: "survey", folder: SurveyFolder},
	{pattern: `[\s\S]*(IOSSensor)[\s\S]*\.csv`, keyword: "iossensor", folder: IOSSensorFolder},
	{pattern: `[\s\S]*(Preprocessed)[\s\S]*\.csv`, keyword: "preprocessed", folder: PreprocessedFolder},
	{pattern: `[\s\S]*(Time Use Diary)[\s\S]*\.csv`, keyword: "time use diary", folder: DiaryFolder},
}

// CategoryFor returns the destination folder name for files of the
// given data type.
func CategoryFor(d chronicle.DataType) (string, error) {
	switch d {
	case chronicle.Raw:
		return RawFolder, nil
	case chronicle.Survey:
		return SurveyFolder, nil
	case chronicle.IOSSensor:
		return IOSSensorFolder, nil
	case chronicle.Preprocessed:
		return PreprocessedFolder, nil
	case chronicle.DiaryDaytime, chronicle.DiaryNighttime, chronicle.DiarySummarized:
		return DiaryFolder, nil
	}
	return "", fmt.Errorf("organizer: unrecognized data type %q", string(d))
}

// Options configures an Organizer.
type Options struct {
	// Folder is the download folder both passes operate on.
	Folder string

	// Selected lists the data types downloaded this run. Category
	// folders are created only for selected types.
	Selected []chronicle.DataType

	// DeleteZeroByte enables the zero-byte .csv purge at the end of
	// the organize pass.
	DeleteZeroByte bool

	// Logf receives skip-not-fail notices, such as a zero-byte file
	// held open elsewhere. Nil discards them.
	Logf func(format string, args ...any)
}

// Organizer runs the post-download archive and organize passes over a
// download folder.
type Organizer struct {
	opts Options
}

// New creates an Organizer for the given options.
func New(opts Options) *Organizer {
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}
	return &Organizer{opts: opts}
}

// matcher reports whether a filename belongs to a classification
// pattern. Compiles the pattern once; if compilation fails it degrades
// to case-insensitive keyword matching, which assigns the same
// categories for every filename this system produces.
func matcher(pattern, keyword string) func(name string) bool {
	re, err := regexp.Compile(pattern)
	if err == nil {
		return re.MatchString
	}
	return func(name string) bool {
		lower := strings.ToLower(name)
		if keyword != "" {
			return strings.Contains(lower, keyword)
		}
		return strings.HasSuffix(lower, ".csv")
	}
}

// matchingFiles walks root and returns every regular file whose name
// the match function accepts, excluding any path containing one of the
// ignore substrings.
func matchingFiles(root string, match func(string) bool, ignore []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, ignored := range ignore {
			if strings.Contains(path, ignored) {
				return nil
			}
		}
		if match(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("organizer: scanning %s: %w", root, err)
	}
	return files, nil
}

// moveFile copies src into the destination directory, then deletes the
// original. Copy-then-delete tolerates destinations on a different
// device, where a rename would fail.
func moveFile(src, destDir string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("organizer: open %s: %w", src, err)
	}
	defer in.Close()

	dest := filepath.Join(destDir, filepath.Base(src))
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("organizer: create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("organizer: copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("organizer: finish %s: %w", dest, err)
	}
	return os.Remove(src)
}

// Archive moves every dated export whose embedded date is strictly
// before today into a per-date archive subfolder next to the file.
// Paths already under an Archive subtree and image files are left
// alone, which makes the pass idempotent.
func (o *Organizer) Archive(now time.Time) error {
	dated := matcher(`[\s\S]*(\d{2}[.-]\d{2}[.-]\d{4})[\s\S]*\.csv`, "")
	files, err := matchingFiles(o.opts.Folder, dated, []string{"Archive", ".png"})
	if err != nil {
		return err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, file := range files {
		token := dateToken.FindString(filepath.Base(file))
		if token == "" {
			return &CorruptedFilenameError{Path: file}
		}

		fileDate, err := time.ParseInLocation("01-02-2006", token, now.Location())
		if err != nil {
			fileDate, err = time.ParseInLocation("01.02.2006", token, now.Location())
		}
		if err != nil {
			return &CorruptedFilenameError{Path: file}
		}

		if !fileDate.Before(today) {
			continue
		}

		parentDir := filepath.Dir(file)
		parentName := filepath.Base(parentDir)
		archiveDir := filepath.Join(parentDir,
			parentName+" Archive",
			fmt.Sprintf("%s Archive %s", parentName, token))
		if err := os.MkdirAll(archiveDir, 0o755); err != nil {
			return fmt.Errorf("organizer: create %s: %w", archiveDir, err)
		}
		if err := moveFile(file, archiveDir); err != nil {
			return err
		}
	}
	return nil
}

// Organize sorts loose exports into per-category folders. A category
// folder is created only when its data type was selected this run;
// files for categories whose folder does not exist stay where they
// are. When enabled, zero-byte .csv files outside the Archive tree are
// deleted at the end; a file held open elsewhere is logged and
// skipped.
func (o *Organizer) Organize() error {
	selected := make(map[string]bool)
	for _, d := range o.opts.Selected {
		folder, err := CategoryFor(d)
		if err != nil {
			return err
		}
		selected[folder] = true
	}

	for _, c := range categories {
		dest := filepath.Join(o.opts.Folder, c.folder)
		if selected[c.folder] {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("organizer: create %s: %w", dest, err)
			}
		}
		if _, err := os.Stat(dest); err != nil {
			continue
		}

		files, err := matchingFiles(o.opts.Folder, matcher(c.pattern, c.keyword), []string{"Archive", c.folder})
		if err != nil {
			return err
		}
		for _, file := range files {
			if err := moveFile(file, dest); err != nil {
				return err
			}
		}
	}

	if o.opts.DeleteZeroByte {
		return o.deleteZeroByteFiles()
	}
	return nil
}

// deleteZeroByteFiles removes empty .csv files outside the Archive
// tree. Permission failures are logged, not fatal.
func (o *Organizer) deleteZeroByteFiles() error {
	files, err := matchingFiles(o.opts.Folder, matcher(`.*\.csv$`, ""), []string{"Archive"})
	if err != nil {
		return err
	}
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || info.Size() != 0 {
			continue
		}
		if err := os.Remove(file); err != nil {
			o.opts.Logf("zero-byte file %s could not be removed, close it and try again: %v", file, err)
		}
	}
	return nil
}
