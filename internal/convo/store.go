package convo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// MalformedRecordError reports a stored conversation file that failed to
// parse or validate. Batch consumers skip the file and keep going.
type MalformedRecordError struct {
	Path string
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed conversation record %s: %v", e.Path, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// ErrRecordNotFound is returned when no conversation file exists for the
// requested student.
var ErrRecordNotFound = errors.New("conversation record not found")

// FileStore persists one JSON conversation file per student plus a flat
// student registry. Appends are read-modify-write: the updated document is
// written to a temp file and renamed over the old one, so a failed write
// leaves the previous valid state intact.
type FileStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

const conversationsDir = "conversations"
const studentsFile = "students.json"

// Open creates the data directory layout and returns a store rooted at dir.
func Open(dir string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, conversationsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create conversations dir: %w", err)
	}

	students := filepath.Join(dir, studentsFile)
	if _, err := os.Stat(students); os.IsNotExist(err) {
		if err := writeFileAtomic(students, []byte("[]")); err != nil {
			return nil, fmt.Errorf("seed student registry: %w", err)
		}
	}

	return &FileStore{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Dir returns the data directory the store is rooted at.
func (s *FileStore) Dir() string { return s.dir }

// RecordPath returns the conversation file path for a student.
// File name format: <student_id>_<student_name>.json.
func (s *FileStore) RecordPath(studentID, studentName string) string {
	name := fmt.Sprintf("%s_%s.json", sanitize(studentID), sanitize(studentName))
	return filepath.Join(s.dir, conversationsDir, name)
}

// RegisterStudent appends an entry to the student registry.
func (s *FileStore) RegisterStudent(info StudentInfo) error {
	lock := s.fileLock(studentsFile)
	lock.Lock()
	defer lock.Unlock()

	students, err := s.readStudents()
	if err != nil {
		return err
	}

	info.Type = TypeStudentInfo
	students = append(students, info)

	data, err := json.MarshalIndent(students, "", "  ")
	if err != nil {
		return fmt.Errorf("encode student registry: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, studentsFile), data); err != nil {
		return fmt.Errorf("write student registry: %w", err)
	}
	return nil
}

// Students returns all registered students in registration order.
func (s *FileStore) Students() ([]StudentInfo, error) {
	lock := s.fileLock(studentsFile)
	lock.Lock()
	defer lock.Unlock()
	return s.readStudents()
}

func (s *FileStore) readStudents() ([]StudentInfo, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, studentsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read student registry: %w", err)
	}
	var students []StudentInfo
	if err := json.Unmarshal(data, &students); err != nil {
		return nil, fmt.Errorf("decode student registry: %w", err)
	}
	return students, nil
}

// AppendTurn appends one turn to the student's conversation, creating the
// record on first write.
func (s *FileStore) AppendTurn(sessionID, studentID, studentName string, turn Turn) error {
	path := s.RecordPath(studentID, studentName)
	lock := s.fileLock(path)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.loadLocked(path)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			return err
		}
		rec = &Record{
			SessionID:   sessionID,
			StudentName: studentName,
			StudentID:   studentID,
		}
	}

	rec.Messages = append(rec.Messages, turn)
	return s.saveLocked(path, rec)
}

// AppendFeedback appends a feedback entry to an existing conversation.
// Feedback is only ever generated from a conversation, so a missing record
// is an error rather than an implicit create.
func (s *FileStore) AppendFeedback(studentID, studentName string, fb FeedbackEntry) error {
	path := s.RecordPath(studentID, studentName)
	lock := s.fileLock(path)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.loadLocked(path)
	if err != nil {
		return err
	}

	rec.Feedback = append(rec.Feedback, fb)
	return s.saveLocked(path, rec)
}

// Load reads and validates one student's conversation record.
func (s *FileStore) Load(studentID, studentName string) (*Record, error) {
	path := s.RecordPath(studentID, studentName)
	lock := s.fileLock(path)
	lock.Lock()
	defer lock.Unlock()
	return s.loadLocked(path)
}

// LoadAll reads every conversation file under the store. Malformed files
// are collected and reported, never fatal: a single corrupt record must not
// abort a whole analysis batch. Records are returned in file-name order so
// a run is deterministic.
func (s *FileStore) LoadAll() ([]*Record, []*MalformedRecordError, error) {
	dir := filepath.Join(s.dir, conversationsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read conversations dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var records []*Record
	var malformed []*MalformedRecordError
	for _, name := range names {
		path := filepath.Join(dir, name)
		rec, err := readRecord(path)
		if err != nil {
			var mr *MalformedRecordError
			if errors.As(err, &mr) {
				malformed = append(malformed, mr)
				continue
			}
			return nil, nil, err
		}
		records = append(records, rec)
	}
	return records, malformed, nil
}

func (s *FileStore) loadLocked(path string) (*Record, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", path, ErrRecordNotFound)
	}
	return readRecord(path)
}

func (s *FileStore) saveLocked(path string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode conversation record: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write conversation record: %w", err)
	}
	return nil
}

// readRecord parses and shape-validates a conversation file. Parse and
// validation failures come back as *MalformedRecordError; I/O failures are
// returned as-is.
func readRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read conversation record: %w", err)
	}

	if err := validateRecordJSON(data); err != nil {
		return nil, &MalformedRecordError{Path: path, Err: err}
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &MalformedRecordError{Path: path, Err: err}
	}
	return &rec, nil
}

// fileLock returns the mutex serializing writes to one file, creating it on
// first use. Appends within a process are single-writer per student.
func (s *FileStore) fileLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// sanitize strips path-hostile runes from a file name component.
func sanitize(part string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '-'
		}
		return r
	}, part)
}
