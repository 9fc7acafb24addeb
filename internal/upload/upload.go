package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxSize = 5 << 20 // 5MB

// 扩展名与 MIME 同时校验，两边取交集
var allowedExt = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true,
}
var allowedMIME = map[string]bool{
	"image/jpeg": true, "image/jpg": true, "image/png": true, "image/gif": true,
}

var (
	ErrTooLarge    = errors.New("File size too large. Maximum size is 5MB.")
	ErrWrongFormat = errors.New("Only image files (jpeg, jpg, png, gif) are allowed")
)

// Saver 把上传图片落到公开静态目录，记录里只存相对 URL（/uploads/xxx.png）
type Saver struct {
	Dir       string // 磁盘目录
	PublicURL string // 对外前缀，如 "/uploads"
}

func NewSaver(dir string) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Saver{Dir: dir, PublicURL: "/uploads"}, nil
}

// Save 校验类型和大小后写盘，返回相对 URL
func (s *Saver) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	mime := fh.Header.Get("Content-Type")
	if !allowedExt[ext] || !allowedMIME[mime] {
		return "", ErrWrongFormat
	}
	if fh.Size > MaxSize {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := fmt.Sprintf("%s%s", uuid.NewString(), ext)
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path.Join(s.PublicURL, name), nil
}

// Remove 按相对 URL 删除文件；文件不存在不算错
func (s *Saver) Remove(publicURL string) error {
	if publicURL == "" {
		return nil
	}
	name := path.Base(publicURL)
	err := os.Remove(filepath.Join(s.Dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
