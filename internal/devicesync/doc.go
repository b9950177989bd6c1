// Package devicesync mirrors the library onto portable devices.
//
// Every configured device owns devices/<name>. After a sync its root holds
// the device's playlist files and its output/ directory holds exactly the
// output files those playlists reference. Files already on the device are
// trusted by name; nothing is re-copied.
package devicesync
