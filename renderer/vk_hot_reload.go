package renderer

import (
	"encoding/binary"
	"path/filepath"
	"sync"

	"GPU_mesh_renderer/common"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// ShaderWatcher reports changes of shader files. It watches the parent directories since editors and
// compilers usually replace a file instead of writing it in place. Changes coalesce until Changed is called.
type ShaderWatcher struct {
	fsnotify *fsnotify.Watcher
	files    map[string]bool
	changed  chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func NewShaderWatcher(paths ...string) (*ShaderWatcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create shader watcher")
	}
	sw := &ShaderWatcher{
		fsnotify: fsWatch,
		files:    make(map[string]bool),
		changed:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsWatch.Close()
			return nil, errors.Wrapf(err, "resolve %s", p)
		}
		sw.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsWatch.Add(dir); err != nil {
			fsWatch.Close()
			return nil, errors.Wrapf(err, "watch %s", dir)
		}
	}
	sw.wg.Add(1)
	go sw.run()
	return sw, nil
}

func (sw *ShaderWatcher) run() {
	defer sw.wg.Done()
	for {
		select {
		case e, ok := <-sw.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(e.Name)
			if err != nil || !sw.files[abs] {
				continue
			}
			select {
			case sw.changed <- struct{}{}:
			default:
			}
		case err, ok := <-sw.fsnotify.Errors:
			if !ok {
				return
			}
			common.LogWarn("Shader watcher: %v", err)
		case <-sw.done:
			return
		}
	}
}

// Changed reports whether a watched file changed since the last call. It never blocks.
func (sw *ShaderWatcher) Changed() bool {
	select {
	case <-sw.changed:
		return true
	default:
		return false
	}
}

func (sw *ShaderWatcher) Close() error {
	var err error
	sw.once.Do(func() {
		close(sw.done)
		err = sw.fsnotify.Close()
		sw.wg.Wait()
	})
	return err
}

// reloadPipelines rebuilds all pipeline variants from the current shader files. Incomplete files or a failed
// build keep the old pipelines alive.
func (c *Core) reloadPipelines() {
	vert, errV := ReadShader(c.cfg.Render.VertexShader)
	frag, errF := ReadShader(c.cfg.Render.FragmentShader)
	if errV != nil || errF != nil || !validSPIRV(vert) || !validSPIRV(frag) {
		c.log.Warn("Shader reload skipped, shader files are incomplete", "vertex", errV, "fragment", errF)
		return
	}
	c.ctx.WaitIdle()
	pipelines, err := swapPipelines(c.pipelines, c.compilePipelines, c.destroyPipelineSet)
	c.pipelines = pipelines
	if err != nil {
		c.log.Warn("Shader reload failed, keeping the previous pipelines", "err", err)
		return
	}
	c.log.Info("Reloaded shaders")
}

const spirvMagic = 0x07230203

// validSPIRV checks the size and the magic number of the 5 word SPIR-V header. A compiler that is still
// writing the file fails it.
func validSPIRV(code []byte) bool {
	return len(code) >= 20 && len(code)%4 == 0 && binary.LittleEndian.Uint32(code) == spirvMagic
}
