// Package playlist defines the playlist-fetch collaborator contract: the row
// shape a membership fetch yields and the ISO-week key the pipeline derives
// from it.
package playlist
