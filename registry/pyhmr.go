package registry

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/titpetric/xpipe/model"
	"github.com/titpetric/xpipe/psexec"
)

// pyhmrRunner implements Hadoop map-reduce in Python via the Hadoop
// streaming API. Its environment-variable contract is documented in
// EnvVarsHelp, not enforced here.
type pyhmrRunner struct {
	exec *psexec.Executor
}

func (r *pyhmrRunner) ShortHelp() string { return "Hadoop map-reduce in python" }

func (r *pyhmrRunner) LongHelp() string {
	return `This code block type encapsulates a Hadoop map-reduce task implemented in
Python. The map-reduce capability is mediated through the Hadoop streaming API.
This code block should contain two functions: map(stream) and reduce(stream).

For map(stream), stream is an iterable over string lines, no format assumed.
The output should be printed to stdout with the format, string key-value pairs
with some character separator (tab separators are typical).

For reduce(stream), stream is an iterable over the output of one or more
map(stream) functions. The output of the reduce should also be string key-value
pairs.

Note that in order for this block to run, three environment variables MUST be
set: PYHMR_INPUT, PYHMR_OUTPUT, and PYHMR_STREAMING_API_JAR.`
}

func (r *pyhmrRunner) EnvVarsHelp() map[string]string {
	return map[string]string{
		"PYHMR_HADOOP_CMD":        `the Hadoop executable that should be invoked. Default is "hadoop"`,
		"PYHMR_PYTHON_CMD":        `the Python executable that should be invoked on the DataNodes. Default is "python"`,
		"PYHMR_INPUT":             "the input files in the HDFS (required)",
		"PYHMR_OUTPUT":            "the output location on the HDFS (required)",
		"PYHMR_STREAMING_API_JAR": "the absolute path to the streaming API jar included with the Hadoop installation (required)",
		"PYHMR_EXTRA_FILES":       "any extra files that should be bundled with the task on the DataNodes",
		"PYHMR_NUM_REDUCERS":      "the number of reducers that should be used in performing this task",
		"PYHMR_TEST_CMD": "a command that can be used to test this map-reduce task. If this is set, " +
			"then the task will be run in test mode (Hadoop will not be run, the HDFS will not be accessed). " +
			"The output of this command will be used as input to the mapper (which will then be used as " +
			"input to the reducer). The output will be printed to STDOUT.",
		"PYHMR_TEST_OUTPUT": "the file that the result of the test will be written to. If not specified, STDOUT will be used.",
	}
}

func (r *pyhmrRunner) Run(ctx context.Context, argStr string, env model.Context, cwd string, content []string) error {
	hadoopCmd := orDefault(env["PYHMR_HADOOP_CMD"], "hadoop")
	pythonCmd := orDefault(env["PYHMR_PYTHON_CMD"], "python")

	streamingAPIJar := env["PYHMR_STREAMING_API_JAR"]
	input := env["PYHMR_INPUT"]
	output := env["PYHMR_OUTPUT"]
	extraFiles := env["PYHMR_EXTRA_FILES"]
	numReducers := env["PYHMR_NUM_REDUCERS"]
	testCmd, isTest := env["PYHMR_TEST_CMD"]
	testOutput := env["PYHMR_TEST_OUTPUT"]

	body := strings.Join(content, "\n")

	mapperFile, err := writeTempFile([]string{body, "", "if __name__ == '__main__':", "    import sys", "    map(sys.stdin)"}, "py")
	if err != nil {
		return err
	}
	defer os.Remove(mapperFile)

	reducerFile, err := writeTempFile([]string{body, "", "if __name__ == '__main__':", "    import sys", "    reduce(sys.stdin)"}, "py")
	if err != nil {
		return err
	}
	defer os.Remove(reducerFile)

	var cmd string
	if isTest && testCmd != "" {
		cmd = fmt.Sprintf("%s | %s %s | %s %s", testCmd, pythonCmd, mapperFile, pythonCmd, reducerFile)
		if testOutput != "" {
			cmd += " > " + testOutput
		}
	} else {
		cmd = fmt.Sprintf("%s jar %s", hadoopCmd, streamingAPIJar)
		cmd += fmt.Sprintf(" -input \"%s\" -output \"%s\"", input, output)
		cmd += fmt.Sprintf(" -mapper \"%s %s\" -reducer \"%s %s\"", pythonCmd, mapperFile, pythonCmd, reducerFile)
		cmd += fmt.Sprintf(" -files \"%s\"", strings.Join([]string{mapperFile, reducerFile, extraFiles}, ","))
		if numReducers != "" {
			cmd += " -D mapred.reduce.tasks=" + numReducers
		}
	}

	c := r.exec.ShellCommand(cmd)
	c.Dir = cwd
	c.Env = env.Environ()
	res := r.exec.Run(ctx, c)
	if !res.Success() {
		return blockFailed(cmd, res)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
