package jdtls

// Workspace command identifiers understood by jdtls with the java-dependency
// bundle loaded.
const (
	CmdProjectList          = "java.project.list"
	CmdGetPackageData       = "java.getPackageData"
	CmdResolvePath          = "java.resolvePath"
	CmdGetMainClasses       = "java.project.getMainClasses"
	CmdGenerateJar          = "java.project.generateJar"
	CmdRefreshLibraries     = "java.project.refreshLib"
	CmdResolveBuildFiles    = "java.project.resolveWorkspaceBuildFiles"
	CmdGetClasspaths        = "java.project.getClasspaths"
	CmdConfigurationUpdate  = "java.projectConfiguration.update"
	MethodBuildWorkspace    = "java/buildWorkspace"
	MethodDocumentSymbol    = "textDocument/documentSymbol"
	MethodClassFileContents = "java/classFileContents"
)
