package media_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soocke/proctor-go/domain/media"
	"github.com/soocke/proctor-go/domain/media/mediatest"
)

func TestFullscreen_EnterExit(t *testing.T) {
	d := mediatest.NewDisplay()
	f := media.NewFullscreen(d, discardLogger)
	var seen []bool
	f.OnChange(func(v bool) { seen = append(seen, v) })

	require.NoError(t, f.Enter())
	require.True(t, f.Active())
	require.NoError(t, f.Exit())
	require.False(t, f.Active())
	require.Equal(t, []bool{true, false}, seen, "one notification per flip")
}

func TestFullscreen_RejectionLeavesFlag(t *testing.T) {
	d := mediatest.NewDisplay()
	d.RequestErr = errors.New("blocked by policy")
	f := media.NewFullscreen(d, discardLogger)
	require.Error(t, f.Enter())
	require.False(t, f.Active())
}

func TestFullscreen_PlatformChangeIsAuthoritative(t *testing.T) {
	d := mediatest.NewDisplay()
	f := media.NewFullscreen(d, discardLogger)
	require.NoError(t, f.Enter())
	d.UserExit()
	require.False(t, f.Active())
}

func TestFullscreen_ToggleFollowsPlatformState(t *testing.T) {
	d := mediatest.NewDisplay()
	f := media.NewFullscreen(d, nil)
	require.NoError(t, f.Toggle())
	require.True(t, d.IsFullscreen())
	require.NoError(t, f.Toggle())
	require.False(t, d.IsFullscreen())
	require.False(t, f.Active())
}

func TestFullscreen_CloseUnsubscribes(t *testing.T) {
	d := mediatest.NewDisplay()
	f := media.NewFullscreen(d, nil)
	require.Equal(t, 1, d.Listeners())
	f.Close()
	f.Close()
	require.Zero(t, d.Listeners())
}

func TestFullscreen_NoDisplay(t *testing.T) {
	f := media.NewFullscreen(nil, nil)
	require.ErrorIs(t, f.Toggle(), media.ErrNotSupported)
	require.False(t, f.Active())
}
