// Package brightness flips screen brightness between full and half.
package brightness

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultRoot is where Linux exposes backlight devices.
const DefaultRoot = "/sys/class/backlight"

var ErrNoBacklight = errors.New("brightness: no backlight device")

// Backlight toggles a sysfs backlight device.
type Backlight struct {
	Root string
}

// NewBacklight returns a toggler over root (DefaultRoot when empty).
func NewBacklight(root string) *Backlight {
	if root == "" {
		root = DefaultRoot
	}
	return &Backlight{Root: root}
}

// Toggle sets brightness to half when it is at full, and to full otherwise.
func (b *Backlight) Toggle() error {
	dev, err := b.device()
	if err != nil {
		return err
	}
	max, err := readInt(filepath.Join(dev, "max_brightness"))
	if err != nil {
		return err
	}
	cur, err := readInt(filepath.Join(dev, "brightness"))
	if err != nil {
		return err
	}

	next := max
	if cur >= max {
		next = max / 2
	}
	if err := os.WriteFile(filepath.Join(dev, "brightness"), []byte(strconv.Itoa(next)), 0644); err != nil {
		return fmt.Errorf("brightness: write %s: %w", filepath.Base(dev), err)
	}
	log.Printf("brightness: %s %d -> %d (max %d)", filepath.Base(dev), cur, next, max)
	return nil
}

// Level returns the current brightness as a fraction of max.
func (b *Backlight) Level() (float64, error) {
	dev, err := b.device()
	if err != nil {
		return 0, err
	}
	max, err := readInt(filepath.Join(dev, "max_brightness"))
	if err != nil {
		return 0, err
	}
	cur, err := readInt(filepath.Join(dev, "brightness"))
	if err != nil {
		return 0, err
	}
	if max <= 0 {
		return 0, fmt.Errorf("brightness: %s reports max %d", filepath.Base(dev), max)
	}
	return float64(cur) / float64(max), nil
}

// device picks the first backlight device in name order.
func (b *Backlight) device() (string, error) {
	entries, err := os.ReadDir(b.Root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoBacklight, err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		dir := filepath.Join(b.Root, name)
		if _, err := os.Stat(filepath.Join(dir, "max_brightness")); err == nil {
			return dir, nil
		}
	}
	return "", ErrNoBacklight
}

func readInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("brightness: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("brightness: parse %s: %w", path, err)
	}
	return n, nil
}

// Toggler is what the action router calls.
type Toggler interface {
	Toggle() error
}
