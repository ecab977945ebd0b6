package state

import (
	"time"

	"github.com/google/uuid"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
		RunID: uuid.Must(uuid.NewV7()),
		DefaultCoverArt: []byte(`  .=========================.
 /                           \
|   ~ ~ ~ ~ ~ ~ ~ ~ ~ ~ ~   |
 \                           /
  '========================='`),
		DefaultFrontMatter: []byte("This page left intentionally blank.\n"),
		DefaultCoverImage: []byte(`<svg viewBox="0 0 600 800" xmlns="http://www.w3.org/2000/svg">
  <rect x="30" y="30" width="540" height="740" fill="none" stroke="black" stroke-width="3"/>
  <rect x="44" y="44" width="512" height="712" fill="none" stroke="black" stroke-width="1"/>
  <circle cx="300" cy="400" r="130" fill="none" stroke="black" stroke-width="2"/>
  <circle cx="300" cy="400" r="110" fill="none" stroke="black" stroke-width="1"/>
  <path d="M300 290 V510 M190 400 H410
           M222 322 L378 478 M378 322 L222 478"
        stroke="black" stroke-width="1" fill="none"/>
</svg>`),
	}
}
