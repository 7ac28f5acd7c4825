package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	nanoid "github.com/jaevor/go-nanoid"
)

var (
	ErrNotFound   = errors.New("image not found")
	ErrNotImage   = errors.New("upload is not an image")
	ErrInvalidKey = errors.New("invalid image key")
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{4,}(\.[a-z0-9]+)?$`)

// LocalStorage keeps uploaded images on disk under nanoid keys, sharded by
// the first two characters of the key.
type LocalStorage struct {
	basePath string
	newID    func() string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	generateID, err := nanoid.Standard(21)
	if err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath, newID: generateID}, nil
}

func (ls *LocalStorage) getPathFromKey(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", ErrInvalidKey
	}
	return filepath.Join(ls.basePath, key[:1], key[1:2], key), nil
}

// SaveImage stores data when it sniffs as an image and returns its key,
// which carries the detected extension.
func (ls *LocalStorage) SaveImage(data io.Reader) (string, error) {
	buf := bufio.NewReaderSize(data, 3072)
	head, err := buf.Peek(3072)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", err
	}

	mt := mimetype.Detect(head)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}

	key := ls.newID() + mt.Extension()
	if err := ls.Save(key, buf); err != nil {
		return "", err
	}
	return key, nil
}

func (ls *LocalStorage) Save(key string, data io.Reader) error {
	filePath, err := ls.getPathFromKey(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, data)
	return err
}

func (ls *LocalStorage) Open(key string) (*os.File, error) {
	filePath, err := ls.getPathFromKey(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image %s: %w", key, ErrNotFound)
		}
		return nil, err
	}

	return file, nil
}

func (ls *LocalStorage) Delete(key string) error {
	filePath, err := ls.getPathFromKey(key)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
