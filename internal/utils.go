package internal

import (
	"fmt"
	"math"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// formats the text in a javascript like syntax.
func format(text string, params map[string]string) string {
	for key, val := range params {
		text = strings.ReplaceAll(text, fmt.Sprintf("${%v}", key), val)
	}
	return text
}

// writeToFile writes text string to the given filename.
func writeToFile(text, filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(text)
	return err
}

func checkPathExists(fp string) bool {
	_, e := os.Stat(fp)
	return !os.IsNotExist(e)
}

func addExtension(filename, ext string) string {
	if !strings.HasSuffix(filename, "."+ext) {
		return filename + "." + ext
	}
	return filename
}

func roundFloat(num float64, digits int) float64 {
	tenMultiplier := math.Pow10(digits)
	return math.Round(num*tenMultiplier) / tenMultiplier
}

// DataDir returns the directory tck keeps its history in, creating it if needed.
func DataDir() (string, error) {
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(usr.HomeDir, ".tck")
	if !checkPathExists(dir) {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// safeFileName keeps a case name usable as part of a file name.
func safeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
