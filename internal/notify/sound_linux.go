package notify

import "os/exec"

// chimeCommand resolves the audio player invocation for the reminder
// chime. canberra ships with most desktop environments, paplay with
// PulseAudio and PipeWire.
func chimeCommand() (string, []string) {
	if path, err := exec.LookPath("canberra-gtk-play"); err == nil {
		return path, []string{"-i", "message"}
	}
	if path, err := exec.LookPath("paplay"); err == nil {
		return path, []string{"/usr/share/sounds/freedesktop/stereo/message.oga"}
	}
	return "", nil
}
