package imaging

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/nkjain92/gpt-image-1/pkg/repository/image"
)

var imagePattern = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|webp)$`)

// IsImageName reports whether name is a plain file name with a recognized
// image extension.
func IsImageName(name string) bool {
	return image.ValidName(name) && imagePattern.MatchString(name)
}

// Lister enumerates the images of one store, most recent first.
type Lister struct {
	repo      image.ImageRepository
	urlPrefix string
}

// NewLister lists repo and builds URLs as urlPrefix + filename.
func NewLister(repo image.ImageRepository, urlPrefix string) *Lister {
	return &Lister{repo: repo, urlPrefix: urlPrefix}
}

// List never fails: an unreadable store is reported as empty. Entries with
// equal modification times are ordered by filename.
func (l *Lister) List(ctx context.Context) []StoredImage {
	objects, err := l.repo.List(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("url_prefix", l.urlPrefix).Msg("listing store failed, reporting no images")
		return []StoredImage{}
	}

	images := lo.FilterMap(objects, func(o image.Object, _ int) (StoredImage, bool) {
		return StoredImage{Filename: o.Name, URL: l.urlPrefix + o.Name, ModTime: o.ModTime}, IsImageName(o.Name)
	})
	slices.SortFunc(images, func(a, b StoredImage) int {
		if c := b.ModTime.Compare(a.ModTime); c != 0 {
			return c
		}
		return strings.Compare(a.Filename, b.Filename)
	})
	return images
}
